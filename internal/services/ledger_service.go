package services

import (
	"context"
	"fmt"
	"time"

	"utang/internal/amqp"
	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
)

// EventPublisher announces ledger writes to other processes.
type EventPublisher interface {
	PublishLedgerChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// Invalidator drops derived state held for a user.
type Invalidator interface {
	Invalidate(userID string)
}

// LedgerStore is the part of a repository the write path needs.
type LedgerStore interface {
	ledger.DebtStore
	ledger.PaymentStore
	ledger.BudgetStore
}

// LedgerService owns every write to a user's debts, payments and budget.
// Writes are validated, stored, logged, then announced; a failed announcement
// never fails the write.
type LedgerService struct {
	store       LedgerStore
	events      EventPublisher
	invalidator Invalidator
	logger      *applog.Logger
	audit       *applog.StructuredLogger
	now         func() time.Time
}

// NewLedgerService wires the write path. events and invalidator may be nil.
func NewLedgerService(store LedgerStore, events EventPublisher, invalidator Invalidator, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &LedgerService{
		store:       store,
		events:      events,
		invalidator: invalidator,
		logger:      logger,
		audit:       applog.NewStructuredLogger(logger),
		now:         time.Now,
	}
}

// DebtPatch carries the fields of a partial debt update; nil keeps the stored value.
type DebtPatch struct {
	Name           *string
	Balance        *core.Money
	InterestRate   *core.Rate
	MinimumPayment *core.Money
	DueDay         *int
	Category       *core.DebtCategory
	Frequency      *core.PaymentFrequency
}

func (p DebtPatch) Apply(d core.Debt) core.Debt {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Balance != nil {
		d.Balance = *p.Balance
	}
	if p.InterestRate != nil {
		d.InterestRate = *p.InterestRate
	}
	if p.MinimumPayment != nil {
		d.MinimumPayment = *p.MinimumPayment
	}
	if p.DueDay != nil {
		d.DueDay = *p.DueDay
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Frequency != nil {
		d.Frequency = *p.Frequency
	}
	return d
}

// BudgetItemPatch carries the fields of a partial budget item update.
type BudgetItemPatch struct {
	Name      *string
	Amount    *core.Money
	Category  *string
	Type      *core.ItemType
	Essential *bool
	Fixed     *bool
	Protected *bool
}

func (p BudgetItemPatch) Apply(b core.BudgetItem) core.BudgetItem {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Amount != nil {
		b.Amount = *p.Amount
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Essential != nil {
		b.Essential = *p.Essential
	}
	if p.Fixed != nil {
		b.Fixed = *p.Fixed
	}
	if p.Protected != nil {
		b.Protected = *p.Protected
	}
	return b
}

// Debts

func (s *LedgerService) ListDebts(ctx context.Context, userID string) ([]core.Debt, error) {
	return s.store.ListDebts(ctx, userID)
}

func (s *LedgerService) GetDebt(ctx context.Context, userID, id string) (core.Debt, error) {
	return s.store.GetDebt(ctx, userID, id)
}

func (s *LedgerService) CreateDebt(ctx context.Context, userID string, d core.Debt) (core.Debt, error) {
	d.UserID = userID
	if d.Frequency == "" {
		d.Frequency = core.Monthly
	}
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	created, err := s.store.CreateDebt(ctx, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	s.changed(ctx, userID, amqp.EntityDebt, created.ID, amqp.OperationCreated, created.Balance)
	return created, nil
}

func (s *LedgerService) UpdateDebt(ctx context.Context, userID, id string, patch DebtPatch) (core.Debt, error) {
	current, err := s.store.GetDebt(ctx, userID, id)
	if err != nil {
		return core.Debt{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.Debt{}, err
	}
	updated, err := s.store.UpdateDebt(ctx, userID, next)
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}
	s.changed(ctx, userID, amqp.EntityDebt, id, amqp.OperationUpdated, updated.Balance)
	return updated, nil
}

func (s *LedgerService) DeleteDebt(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteDebt(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, amqp.EntityDebt, id, amqp.OperationDeleted, core.Money{})
	return nil
}

// Payments

func (s *LedgerService) ListPayments(ctx context.Context, userID string) ([]core.Payment, error) {
	return s.store.ListPayments(ctx, userID)
}

func (s *LedgerService) ListPaymentsByDebt(ctx context.Context, userID, debtID string) ([]core.Payment, error) {
	return s.store.ListPaymentsByDebt(ctx, userID, debtID)
}

// CreatePayment records a payment against one of the user's debts. A missing
// kind means a minimum payment and a missing date means today.
func (s *LedgerService) CreatePayment(ctx context.Context, userID string, p core.Payment) (core.Payment, error) {
	p.UserID = userID
	if p.Kind == "" {
		p.Kind = core.MinimumPayment
	}
	if p.PaidAt.IsZero() {
		y, m, d := s.now().UTC().Date()
		p.PaidAt = core.NewDate(y, int(m), d)
	}
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	if _, err := s.store.GetDebt(ctx, userID, p.DebtID); err != nil {
		return core.Payment{}, err
	}
	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	s.changed(ctx, userID, amqp.EntityPayment, created.ID, amqp.OperationCreated, created.Amount)
	return created, nil
}

func (s *LedgerService) DeletePayment(ctx context.Context, userID, id string) error {
	if err := s.store.DeletePayment(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, amqp.EntityPayment, id, amqp.OperationDeleted, core.Money{})
	return nil
}

// Budget items

func (s *LedgerService) ListBudgetItems(ctx context.Context, userID string) ([]core.BudgetItem, error) {
	return s.store.ListBudgetItems(ctx, userID)
}

func (s *LedgerService) CreateBudgetItem(ctx context.Context, userID string, b core.BudgetItem) (core.BudgetItem, error) {
	b.UserID = userID
	if err := b.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	created, err := s.store.CreateBudgetItem(ctx, b)
	if err != nil {
		return core.BudgetItem{}, fmt.Errorf("create budget item: %w", err)
	}
	s.changed(ctx, userID, amqp.EntityBudgetItem, created.ID, amqp.OperationCreated, created.Amount)
	return created, nil
}

func (s *LedgerService) UpdateBudgetItem(ctx context.Context, userID, id string, patch BudgetItemPatch) (core.BudgetItem, error) {
	current, err := s.store.GetBudgetItem(ctx, userID, id)
	if err != nil {
		return core.BudgetItem{}, err
	}
	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	updated, err := s.store.UpdateBudgetItem(ctx, userID, next)
	if err != nil {
		return core.BudgetItem{}, fmt.Errorf("update budget item: %w", err)
	}
	s.changed(ctx, userID, amqp.EntityBudgetItem, id, amqp.OperationUpdated, updated.Amount)
	return updated, nil
}

func (s *LedgerService) DeleteBudgetItem(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudgetItem(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, userID, amqp.EntityBudgetItem, id, amqp.OperationDeleted, core.Money{})
	return nil
}

// changed runs after every successful write.
func (s *LedgerService) changed(ctx context.Context, userID, entity, entityID, op string, amount core.Money) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
	s.audit.LogLedgerChange(ctx, userID, entity, entityID, op, amount.Cents)

	if s.events == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(userID, entity, entityID, op)
	if err := s.events.PublishLedgerChange(ctx, msg); err != nil {
		s.audit.LogError(ctx, "Failed to publish ledger change", err, applog.OpPublish,
			applog.NewFields().WithUser(userID).WithEntity(entity, entityID).WithErrorType(applog.ErrorTypeNetwork))
	}
}
