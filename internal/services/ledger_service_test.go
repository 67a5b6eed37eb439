package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

type fakeEvents struct {
	published []int64
	fail      bool
	closed    bool
}

func (f *fakeEvents) PublishTransactionEvent(_ context.Context, id, _ int64) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakeEvents) Close() error {
	f.closed = true
	return nil
}

func newTestStore(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(":memory:")
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedOwner(t *testing.T, repo *storage.Repository, email string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Name:         "Test Owner",
		Email:        email,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return u
}

func seedCategory(t *testing.T, repo *storage.Repository, ownerID int64, name string, limitCents int64) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), ownerID, core.Category{
		Name:        name,
		BudgetLimit: core.Money{Cents: limitCents},
	})
	if err != nil {
		t.Fatalf("seed category %q: %v", name, err)
	}
	return c
}

func TestLedgerService_CreateTransactionPublishesEvent(t *testing.T) {
	repo := newTestStore(t)
	owner := seedOwner(t, repo, "events@example.com")
	cat := seedCategory(t, repo, owner.ID, "Comida", 0)

	events := &fakeEvents{}
	svc := NewLedgerService(repo, events)

	created, err := svc.CreateTransaction(context.Background(), owner.ID, core.Transaction{
		Amount:     core.Money{Cents: 1250},
		Concept:    "Almuerzo",
		Date:       time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
		Type:       core.Expense,
		CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if len(events.published) != 1 || events.published[0] != created.ID {
		t.Fatalf("expected one event for id %d, got %v", created.ID, events.published)
	}
}

func TestLedgerService_CreateTransactionSurvivesPublishFailure(t *testing.T) {
	repo := newTestStore(t)
	owner := seedOwner(t, repo, "broker-down@example.com")
	cat := seedCategory(t, repo, owner.ID, "Carro", 0)

	svc := NewLedgerService(repo, &fakeEvents{fail: true})

	created, err := svc.CreateTransaction(context.Background(), owner.ID, core.Transaction{
		Amount:     core.Money{Cents: 50000},
		Concept:    "Gasolina",
		Date:       time.Date(2026, time.March, 11, 8, 0, 0, 0, time.UTC),
		Type:       core.Expense,
		CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}

	// The row is persisted and stays queued for the sweep.
	got, err := repo.GetTransaction(context.Background(), owner.ID, created.ID)
	if err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	if got.Concept != "Gasolina" {
		t.Fatalf("unexpected concept %q", got.Concept)
	}

	pending, err := repo.PendingExports(context.Background(), 10)
	if err != nil {
		t.Fatalf("pending exports: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != created.ID {
		t.Fatalf("expected the transaction pending export, got %v", pending)
	}
}

func TestLedgerService_NilPublisher(t *testing.T) {
	repo := newTestStore(t)
	owner := seedOwner(t, repo, "no-broker@example.com")
	cat := seedCategory(t, repo, owner.ID, "Salud", 0)

	svc := NewLedgerService(repo, nil)

	if _, err := svc.CreateTransaction(context.Background(), owner.ID, core.Transaction{
		Amount:     core.Money{Cents: 900},
		Concept:    "Vitaminas",
		Date:       time.Date(2026, time.March, 12, 9, 0, 0, 0, time.UTC),
		Type:       core.Expense,
		CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
}

func TestLedgerService_PassthroughErrors(t *testing.T) {
	repo := newTestStore(t)
	owner := seedOwner(t, repo, "passthrough@example.com")

	events := &fakeEvents{}
	svc := NewLedgerService(repo, events)

	_, err := svc.CreateTransaction(context.Background(), owner.ID, core.Transaction{
		Amount:     core.Money{Cents: 100},
		Concept:    "Sin categoria",
		Date:       time.Now(),
		Type:       core.Expense,
		CategoryID: 999,
	})
	if !errors.Is(err, core.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if len(events.published) != 0 {
		t.Fatal("no event should be published for a rejected transaction")
	}
}

func TestLedgerService_Close(t *testing.T) {
	repo := newTestStore(t)
	events := &fakeEvents{}
	svc := NewLedgerService(repo, events)

	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !events.closed {
		t.Error("publisher should be closed with the service")
	}
}
