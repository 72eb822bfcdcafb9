// Package history keeps the per-process question/answer log. The log is
// intentionally ephemeral: bounded, in memory, gone on restart.
package history

import (
	"sync"

	"github.com/Alonso-droid/mpedge-app/internal/core/domain"
)

const DefaultLimit = 50

type Store struct {
	mu      sync.RWMutex
	records []domain.AnswerRecord
	limit   int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		records: make([]domain.AnswerRecord, 0, limit),
		limit:   limit,
	}
}

// Append adds a record, evicting the oldest entry once the limit is reached.
func (s *Store) Append(rec domain.AnswerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > s.limit {
		s.records = s.records[len(s.records)-s.limit:]
	}
}

// Recent returns up to n records, most recent first. n <= 0 means all.
func (s *Store) Recent(n int) []domain.AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	out := make([]domain.AnswerRecord, 0, n)
	for i := len(s.records) - 1; i >= len(s.records)-n; i-- {
		out = append(out, s.records[i])
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
