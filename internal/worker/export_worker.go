package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexhdezf18/finanzas-pro-check/internal/amqp"
	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/export"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

// ExportWorker writes recorded transactions out to a statement destination.
// AMQP events give it low latency, the pending sweep gives it completeness.
type ExportWorker struct {
	store     *storage.Repository
	statement export.StatementWriter
	batchSize int
}

func NewExportWorker(store *storage.Repository, statement export.StatementWriter, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExportWorker{
		store:     store,
		statement: statement,
		batchSize: batchSize,
	}
}

// HandleTransactionEvent processes one transaction event from AMQP. A row
// deleted between publish and delivery is dropped, not retried.
func (w *ExportWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		"version", msg.Version)

	tx, err := w.store.GetTransactionForExport(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before export, dropping event", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("load transaction: %w", err)
	}

	return w.exportTransaction(ctx, tx)
}

// ProcessPending exports any transactions still flagged pending. This is the
// backup path for lost AMQP messages and for updates, which are not published.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingExports(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		tx, err := w.store.GetTransactionForExport(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending transaction", "id", p.ID, "error", err)
			if markErr := w.store.MarkExportError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", markErr)
			}
			continue
		}
		if err := w.exportTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCheck drains a larger pending backlog once at worker start, to
// recover from downtime or missed events.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.PendingExports(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports at startup: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	exported := 0
	failed := 0
	for _, p := range pending {
		tx, err := w.store.GetTransactionForExport(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load transaction for startup export",
				"id", p.ID, "error", err)
			if markErr := w.store.MarkExportError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", markErr)
			}
			failed++
			continue
		}
		if err := w.exportTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", p.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)

	return nil
}

func (w *ExportWorker) exportTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.statement.Append(ctx, tx)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to statement: %w", err)
	}

	if err := w.store.MarkExported(ctx, tx.ID); err != nil {
		// The row was written; only the bookkeeping failed. The sweep will
		// re-export it, which the statement tolerates as a duplicate row.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", tx.ID,
		"statement_ref", ref,
		"concept", tx.Concept,
		"amount_cents", tx.Amount.Cents)

	return nil
}
