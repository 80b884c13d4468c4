package auditlog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/atvirokodosprendimai/regintake/internal/core/domain"
)

// MemoryStore keeps the audit log in memory with the same size cap as FileStore.
type MemoryStore struct {
	maxBytes int64

	mu    sync.Mutex
	lines [][]byte
	size  int64
}

func NewMemoryStore(maxBytes int64) *MemoryStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &MemoryStore{maxBytes: maxBytes}
}

func (s *MemoryStore) Append(_ context.Context, record domain.AuditRecord) error {
	line, err := record.Line()
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size > s.maxBytes {
		s.lines = nil
		s.size = 0
	}
	s.lines = append(s.lines, line)
	s.size += int64(len(line))
	return nil
}

// Size returns the number of bytes currently held.
func (s *MemoryStore) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Records decodes the stored lines in append order.
func (s *MemoryStore) Records() ([]domain.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditRecord, 0, len(s.lines))
	for _, line := range s.lines {
		var rec domain.AuditRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode audit line: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
