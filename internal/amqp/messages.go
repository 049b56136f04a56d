package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Entities a ledger change can refer to.
const (
	EntityDebt       = "debt"
	EntityPayment    = "payment"
	EntityBudgetItem = "budget_item"
)

// Operations carried in a ledger change.
const (
	OperationCreated = "created"
	OperationUpdated = "updated"
	OperationDeleted = "deleted"
)

var ErrMalformedMessage = errors.New("malformed ledger change message")

// LedgerChangedMessage tells consumers that one user's ledger moved. It only
// names the record; consumers re-read the user's snapshot themselves.
type LedgerChangedMessage struct {
	UserID    string    `json:"userId"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entityId"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(userID, entity, entityID, operation string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		UserID:    userID,
		Entity:    entity,
		EntityID:  entityID,
		Operation: operation,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a delivery body and rejects messages
// without a user or with an unknown entity.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrMalformedMessage)
	}
	switch msg.Entity {
	case EntityDebt, EntityPayment, EntityBudgetItem:
	default:
		return nil, fmt.Errorf("%w: unknown entity %q", ErrMalformedMessage, msg.Entity)
	}
	return &msg, nil
}
