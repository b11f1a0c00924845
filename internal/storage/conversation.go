package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chatgptgo/chatclient/internal/models"
)

// ErrNotFound is returned when a conversation does not exist
var ErrNotFound = errors.New("conversation not found")

// ConversationStore handles conversation persistence
type ConversationStore struct {
	dir string
}

// NewConversationStore creates a new conversation store
func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{
		dir: dir,
	}
}

// Save saves a conversation to file
func (s *ConversationStore) Save(conv *models.Conversation) error {
	path, err := s.path(conv.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create conversations directory: %w", err)
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	// Write then rename so a crash never leaves a truncated history
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write conversation file: %w", err)
	}

	return nil
}

// Load loads a conversation from file
func (s *ConversationStore) Load(id string) (*models.Conversation, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read conversation file: %w", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return &conv, nil
}

// List returns all stored conversations, most recently updated first.
// Unreadable files are skipped.
func (s *ConversationStore) List() ([]*models.Conversation, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.Conversation{}, nil
		}
		return nil, fmt.Errorf("failed to read conversations directory: %w", err)
	}

	convs := []*models.Conversation{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		conv, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		convs = append(convs, conv)
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].UpdatedAt > convs[j].UpdatedAt
	})

	return convs, nil
}

// Delete deletes a conversation file
func (s *ConversationStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

func (s *ConversationStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid conversation id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
