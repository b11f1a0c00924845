package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"quote and backslash", `say "hi" \o/`, `say \"hi\" \\o/`},
		{"named controls", "a\b\f\n\r\tb", `a\b\f\n\r\tb`},
		{"other controls", "\x00\x01\x1f", `\u0000\u0001\u001f`},
		{"lowercase hex", "\x1b", `\u001b`},
		{"utf8 passthrough", "じゃんけん", "じゃんけん"},
		{"html untouched", "<a & b>", "<a & b>"},
		{"invalid utf8 passthrough", "\xff\xfe", "\xff\xfe"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeString(tt.in))
		})
	}
}

func TestEscapeString_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"Rock",
		"line1\nline2\r\n",
		"tab\there",
		`quotes " and \ backslashes \\`,
		"\x00\x07\x08\x0b\x0c\x1f",
		"mixed \u00e9\u4e16\u754c \U0001F600",
		"/slashes/ stay",
	}
	for c := 0; c < 0x20; c++ {
		inputs = append(inputs, "x"+string(rune(c))+"y")
	}

	for _, in := range inputs {
		doc := `"` + EscapeString(in) + `"`

		var decoded string
		if assert.NoError(t, json.Unmarshal([]byte(doc), &decoded), "doc %q", doc) {
			assert.Equal(t, in, decoded)
		}
		assert.True(t, gjson.Valid(doc), "doc %q", doc)
		assert.Equal(t, in, gjson.Parse(doc).String())
	}
}

func TestEscapeString_InvalidUTF8(t *testing.T) {
	for _, in := range []string{"\xff", "a\xfe\"b", "\xc3\x28\n"} {
		escaped := EscapeString(in)
		doc := `"` + escaped + `"`

		// bytes >= 0x80 pass through untouched
		for i := 0; i < len(in); i++ {
			if in[i] >= 0x80 {
				assert.Contains(t, escaped, string([]byte{in[i]}))
			}
		}
		assert.Equal(t, doc, gjson.Parse(doc).Raw)

		// encoding/json replaces invalid UTF-8 with U+FFFD on decode
		var decoded string
		if assert.NoError(t, json.Unmarshal([]byte(doc), &decoded)) {
			assert.Contains(t, decoded, "�")
		}
	}
}
