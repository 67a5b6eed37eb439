package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alexhdezf18/finanzas-pro-check/internal/config"
	gsheet "github.com/alexhdezf18/finanzas-pro-check/internal/export/google"
	"github.com/alexhdezf18/finanzas-pro-check/internal/export/memory"
)

// Backend represents the type of statement destination.
type Backend string

const (
	MemoryBackend Backend = "memory"
	SheetsBackend Backend = "sheets"
)

// String implements fmt.Stringer
func (b Backend) String() string {
	return string(b)
}

// IsValid returns true if the backend type is valid
func (b Backend) IsValid() bool {
	switch b {
	case MemoryBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// NewStatementWriter creates a statement destination based on the
// configured backend type.
func NewStatementWriter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (StatementWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend := Backend(cfg.StatementBackend)
	switch backend {
	case SheetsBackend:
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		logger.Info("Initialized Google Sheets statement backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
		return client, nil
	case MemoryBackend:
		logger.Info("Initialized in-memory statement backend, rows are not persisted")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported statement backend: %s", backend)
	}
}
