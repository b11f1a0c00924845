package chat

import (
	"math"
	"strconv"
	"strings"
)

// EncodeRequest serializes a request into a compact JSON document.
// Field order is fixed: model, messages, temperature, max_tokens.
func EncodeRequest(req *ChatRequest) ([]byte, error) {
	if req == nil {
		return nil, invalidRequest("request is nil")
	}
	if req.Model == "" {
		return nil, invalidRequest("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, invalidRequest("messages are required")
	}

	var b strings.Builder
	b.WriteString(`{"model":"`)
	writeEscaped(&b, req.Model)
	b.WriteString(`","messages":[`)
	for i, msg := range req.Messages {
		if msg.Role == "" {
			return nil, invalidRequest("message %d: role is required", i)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"role":"`)
		writeEscaped(&b, msg.Role)
		b.WriteString(`","content":"`)
		writeEscaped(&b, msg.Content)
		b.WriteString(`"}`)
	}
	b.WriteByte(']')

	if req.Temperature != nil && math.IsInf(*req.Temperature, 0) {
		return nil, invalidRequest("temperature must be finite")
	}
	if req.Temperature != nil && *req.Temperature >= 0 {
		b.WriteString(`,"temperature":`)
		b.WriteString(strconv.FormatFloat(*req.Temperature, 'g', -1, 64))
	}
	if req.MaxTokens > 0 {
		b.WriteString(`,"max_tokens":`)
		b.WriteString(strconv.Itoa(req.MaxTokens))
	}
	b.WriteByte('}')

	return []byte(b.String()), nil
}
