package storage

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/chat-pattern-explorer/internal/domain/analysis"
)

// MemoryStore keeps the encoded list in process. It goes through the same codec
// as the durable backends so a reload behaves identically.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
	writes  int
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(ctx context.Context) ([]domain.SavedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DecodeEntries(s.payload)
}

func (s *MemoryStore) Replace(ctx context.Context, entries []domain.SavedEntry) error {
	b, err := EncodeEntries(entries)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = b
	s.writes++
	return nil
}

// Writes reports how many times the list was replaced.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
