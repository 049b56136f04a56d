package backend

import (
	"context"

	"utang/internal/ledger"
	"utang/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// CheckFunc reports whether a backend dependency is usable.
type CheckFunc func(ctx context.Context) error

// BackendResult contains the store, the optional event publisher and the
// readiness checks of what was opened.
type BackendResult struct {
	Store ledger.Repository
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.EventPublisher
	Checks    map[string]CheckFunc
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Ledger change events; an empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
