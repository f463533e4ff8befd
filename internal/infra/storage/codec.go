package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
)

// DefaultKey is the key the saved list lives under in every backend.
const DefaultKey = "analysisResults"

// EncodeEntries serializes the saved list. An empty list encodes as [].
func EncodeEntries(entries []domain.SavedEntry) ([]byte, error) {
	if entries == nil {
		entries = []domain.SavedEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode saved results: %w", err)
	}
	return b, nil
}

// DecodeEntries parses a stored list. Empty input and JSON null read as an
// empty list; anything else that is not a JSON array is an error.
func DecodeEntries(b []byte) ([]domain.SavedEntry, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return []domain.SavedEntry{}, nil
	}
	var entries []domain.SavedEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("decode saved results: %w", err)
	}
	if entries == nil {
		entries = []domain.SavedEntry{}
	}
	return entries, nil
}
