package export

import (
	"context"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

// StatementWriter is the outbound port for statement destinations. Append
// writes one transaction as a statement row and returns a destination
// reference for it.
type StatementWriter interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
