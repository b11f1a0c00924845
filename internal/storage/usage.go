package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chatgptgo/chatclient/pkg/chat"
)

const dateLayout = "2006-01-02"

// UsageStore handles daily token usage persistence
type UsageStore struct {
	usageDir string
	mu       sync.Mutex
	now      func() time.Time
}

// NewUsageStore creates a new usage store
func NewUsageStore(usageDir string) *UsageStore {
	return &UsageStore{
		usageDir: usageDir,
		now:      time.Now,
	}
}

// UsageRecord represents one day of usage for one model
type UsageRecord struct {
	Date             string `json:"date"` // YYYY-MM-DD
	Model            string `json:"model"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
	RequestCount     int64  `json:"request_count"`
}

// RecordUsage adds the usage of one completion to today's record for model
func (s *UsageStore) RecordUsage(model string, usage chat.Usage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.usageDir, 0755); err != nil {
		return fmt.Errorf("failed to create usage directory: %w", err)
	}

	today := s.now().Format(dateLayout)
	filePath := filepath.Join(s.usageDir, fmt.Sprintf("%s_%s.json", today, sanitizeFilename(model)))

	record := UsageRecord{
		Date:  today,
		Model: model,
	}
	if data, err := os.ReadFile(filePath); err == nil {
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("failed to unmarshal usage record: %w", err)
		}
	}

	record.PromptTokens += int64(usage.PromptTokens)
	record.CompletionTokens += int64(usage.CompletionTokens)
	record.TotalTokens += int64(usage.TotalTokens)
	record.RequestCount++

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage record: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}

	return nil
}

// GetUsageHistory returns records from the last days calendar days
// (today included), oldest first
func (s *UsageStore) GetUsageHistory(days int) ([]UsageRecord, error) {
	entries, err := os.ReadDir(s.usageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []UsageRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read usage directory: %w", err)
	}

	records := []UsageRecord{}
	// days calendar dates, today included
	cutoff := s.now().AddDate(0, 0, -(days - 1)).Format(dateLayout)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		// Filename: YYYY-MM-DD_model.json
		dateStr, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			continue
		}
		if _, err := time.Parse(dateLayout, dateStr); err != nil || dateStr < cutoff {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.usageDir, entry.Name()))
		if err != nil {
			continue
		}

		var record UsageRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].Model < records[j].Model
	})

	return records, nil
}

// Summarize totals records per model
func Summarize(records []UsageRecord) map[string]UsageRecord {
	totals := make(map[string]UsageRecord)
	for _, r := range records {
		t := totals[r.Model]
		t.Model = r.Model
		t.PromptTokens += r.PromptTokens
		t.CompletionTokens += r.CompletionTokens
		t.TotalTokens += r.TotalTokens
		t.RequestCount += r.RequestCount
		totals[r.Model] = t
	}
	return totals
}

// sanitizeFilename converts a model name to a safe filename
func sanitizeFilename(name string) string {
	if name == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
