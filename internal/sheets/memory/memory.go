package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"utang/internal/core"
)

// Store keeps written reports in memory, newest last per user.
type Store struct {
	mu    sync.Mutex
	rows  int
	items map[string][]core.Report
}

func New() *Store {
	return &Store{items: make(map[string][]core.Report)}
}

// WriteReport stores the report and returns a synthetic row reference.
func (s *Store) WriteReport(_ context.Context, r core.Report) (string, error) {
	if r.UserID == "" {
		return "", errors.New("report has no user")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.UserID] = append(s.items[r.UserID], r)
	s.rows++
	return fmt.Sprintf("mem:%d", s.rows), nil
}

// Latest returns the most recent report written for userID.
func (s *Store) Latest(userID string) (core.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := s.items[userID]
	if len(rs) == 0 {
		return core.Report{}, false
	}
	return rs[len(rs)-1], true
}

// Count returns how many reports were written in total.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}
