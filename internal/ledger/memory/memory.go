// Package memory is an in-process ledger.Repository, used for development and
// tests. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"utang/internal/core"
	"utang/internal/ledger"
)

type entry[T any] struct {
	rec T
	seq uint64
}

type Store struct {
	mu       sync.RWMutex
	seq      uint64
	now      func() time.Time
	users    map[string]entry[core.User]
	debts    map[string]entry[core.Debt]
	payments map[string]entry[core.Payment]
	items    map[string]entry[core.BudgetItem]
}

var _ ledger.Repository = (*Store)(nil)

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock lets tests pin CreatedAt timestamps.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:      now,
		users:    map[string]entry[core.User]{},
		debts:    map[string]entry[core.Debt]{},
		payments: map[string]entry[core.Payment]{},
		items:    map[string]entry[core.BudgetItem]{},
	}
}

func (s *Store) Close() error { return nil }

// next must be called with the write lock held.
func (s *Store) next() (string, uint64, time.Time) {
	s.seq++
	return uuid.NewString(), s.seq, s.now().UTC()
}

// listOwned returns userID's records in insertion order.
func listOwned[T ledger.Owned](m map[string]entry[T], userID string, keep func(T) bool) []T {
	es := make([]entry[T], 0)
	for _, e := range m {
		if e.rec.OwnerID() != userID {
			continue
		}
		if keep != nil && !keep(e.rec) {
			continue
		}
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].seq < es[j].seq })
	out := make([]T, len(es))
	for i, e := range es {
		out[i] = e.rec
	}
	return out
}

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if strings.EqualFold(e.rec.Username, u.Username) {
			return core.User{}, ledger.ErrUsernameTaken
		}
	}
	id, seq, now := s.next()
	u.ID, u.CreatedAt = id, now
	s.users[id] = entry[core.User]{rec: u, seq: seq}
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.users[id]
	return ledger.Authorize(e.rec, ok, id)
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.users {
		if strings.EqualFold(e.rec.Username, username) {
			return e.rec, nil
		}
	}
	return core.User{}, ledger.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	es := make([]entry[core.User], 0, len(s.users))
	for _, e := range s.users {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool { return es[i].seq < es[j].seq })
	out := make([]core.User, len(es))
	for i, e := range es {
		out[i] = e.rec
	}
	return out, nil
}

// Debts

func (s *Store) ListDebts(_ context.Context, userID string) ([]core.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listOwned(s.debts, userID, nil), nil
}

func (s *Store) GetDebt(_ context.Context, userID, id string) (core.Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.debts[id]
	return ledger.Authorize(e.rec, ok, userID)
}

func (s *Store) CreateDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, seq, now := s.next()
	d.ID, d.CreatedAt = id, now
	s.debts[id] = entry[core.Debt]{rec: d, seq: seq}
	return d, nil
}

func (s *Store) UpdateDebt(_ context.Context, userID string, d core.Debt) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.debts[d.ID]
	existing, err := ledger.Authorize(e.rec, ok, userID)
	if err != nil {
		return core.Debt{}, err
	}
	d.UserID, d.CreatedAt = existing.UserID, existing.CreatedAt
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.debts[d.ID] = entry[core.Debt]{rec: d, seq: e.seq}
	return d, nil
}

func (s *Store) DeleteDebt(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.debts[id]
	if _, err := ledger.Authorize(e.rec, ok, userID); err != nil {
		return err
	}
	delete(s.debts, id)
	for pid, p := range s.payments {
		if p.rec.DebtID == id {
			delete(s.payments, pid)
		}
	}
	return nil
}

// Payments

func (s *Store) ListPayments(_ context.Context, userID string) ([]core.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listOwned(s.payments, userID, nil), nil
}

func (s *Store) ListPaymentsByDebt(_ context.Context, userID, debtID string) ([]core.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.debts[debtID]
	if _, err := ledger.Authorize(e.rec, ok, userID); err != nil {
		return nil, err
	}
	return listOwned(s.payments, userID, func(p core.Payment) bool { return p.DebtID == debtID }), nil
}

func (s *Store) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.debts[p.DebtID]
	if _, err := ledger.Authorize(e.rec, ok, p.UserID); err != nil {
		return core.Payment{}, err
	}
	id, seq, now := s.next()
	p.ID, p.CreatedAt = id, now
	s.payments[id] = entry[core.Payment]{rec: p, seq: seq}
	return p, nil
}

func (s *Store) DeletePayment(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.payments[id]
	if _, err := ledger.Authorize(e.rec, ok, userID); err != nil {
		return err
	}
	delete(s.payments, id)
	return nil
}

// Budget items

func (s *Store) ListBudgetItems(_ context.Context, userID string) ([]core.BudgetItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listOwned(s.items, userID, nil), nil
}

func (s *Store) GetBudgetItem(_ context.Context, userID, id string) (core.BudgetItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	return ledger.Authorize(e.rec, ok, userID)
}

func (s *Store) CreateBudgetItem(_ context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	if err := b.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, seq, now := s.next()
	b.ID, b.CreatedAt = id, now
	s.items[id] = entry[core.BudgetItem]{rec: b, seq: seq}
	return b, nil
}

func (s *Store) UpdateBudgetItem(_ context.Context, userID string, b core.BudgetItem) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[b.ID]
	existing, err := ledger.Authorize(e.rec, ok, userID)
	if err != nil {
		return core.BudgetItem{}, err
	}
	b.UserID, b.CreatedAt = existing.UserID, existing.CreatedAt
	if err := b.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	s.items[b.ID] = entry[core.BudgetItem]{rec: b, seq: e.seq}
	return b, nil
}

func (s *Store) DeleteBudgetItem(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	if _, err := ledger.Authorize(e.rec, ok, userID); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}

// Snapshot reads all three collections under one lock.
func (s *Store) Snapshot(_ context.Context, userID string) (ledger.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.Snapshot{
		UserID:      userID,
		Debts:       listOwned(s.debts, userID, nil),
		Payments:    listOwned(s.payments, userID, nil),
		BudgetItems: listOwned(s.items, userID, nil),
	}, nil
}
