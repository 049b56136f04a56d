package sheets

import (
	"context"

	"utang/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter appends one report snapshot per call.
	ReportWriter interface {
		WriteReport(ctx context.Context, r core.Report) (rowRef string, err error)
	}
)
