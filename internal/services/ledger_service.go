package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

// TransactionEvents publishes export nudges for newly recorded transactions.
type TransactionEvents interface {
	PublishTransactionEvent(ctx context.Context, id, version int64) error
	io.Closer
}

// LedgerService orchestrates category and transaction operations across
// SQLite and AMQP. Writes land in SQLite first; the event publish is
// best-effort because the export worker also sweeps pending rows.
type LedgerService struct {
	store  *storage.Repository
	events TransactionEvents
}

func NewLedgerService(store *storage.Repository, events TransactionEvents) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
	}
}

func (s *LedgerService) CreateCategory(ctx context.Context, ownerID int64, c core.Category) (core.Category, error) {
	return s.store.CreateCategory(ctx, ownerID, c)
}

func (s *LedgerService) GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, ownerID, id)
}

func (s *LedgerService) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, ownerID)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, ownerID, id int64, patch storage.CategoryPatch) (core.Category, error) {
	return s.store.UpdateCategory(ctx, ownerID, id, patch)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	return s.store.DeleteCategory(ctx, ownerID, id)
}

// CreateTransaction records the movement locally and publishes an export
// event. A failed publish is logged, not surfaced: the row is already
// persisted and flagged pending, so the worker's sweep will catch it.
func (s *LedgerService) CreateTransaction(ctx context.Context, ownerID int64, in core.Transaction) (core.Transaction, error) {
	created, err := s.store.CreateTransaction(ctx, ownerID, in)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.publishEvent(ctx, created.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", created.ID, "error", err)
	}

	return created, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, ownerID, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context, ownerID int64, w core.Window) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, ownerID, w)
}

// UpdateTransaction applies the patch locally. The store resets the row to
// pending, so the worker's periodic sweep re-exports it with the bumped
// version. No event is published here.
func (s *LedgerService) UpdateTransaction(ctx context.Context, ownerID, id int64, patch storage.TransactionPatch) (core.Transaction, error) {
	return s.store.UpdateTransaction(ctx, ownerID, id, patch)
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	return s.store.DeleteTransaction(ctx, ownerID, id)
}

func (s *LedgerService) publishEvent(ctx context.Context, id, version int64) error {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not available, relying on pending sweep")
		return nil
	}
	return s.events.PublishTransactionEvent(ctx, id, version)
}

// Close closes both the store and the event publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
