package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Amount:     Money{Cents: 1500},
		Concept:    "groceries",
		Date:       time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
		Type:       Expense,
		CategoryID: 3,
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"empty concept", func(tx *Transaction) { tx.Concept = "  " }, ErrEmptyConcept},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{"bad type", func(tx *Transaction) { tx.Type = "TRANSFER" }, ErrInvalidType},
		{"missing category", func(tx *Transaction) { tx.CategoryID = 0 }, ErrMissingCategory},
	}
	for _, tc := range cases {
		tx := validTransaction()
		tc.mutate(&tx)
		err := tx.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%s: %v should wrap ErrInvalidArgument", tc.name, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Comida", Icon: "🍔", BudgetLimit: Money{Cents: 20000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	noLimit := Category{Name: "Sueldo"}
	if err := noLimit.Validate(); err != nil {
		t.Fatalf("limit is optional, got %v", err)
	}
	if err := (Category{Name: ""}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	bad := Category{Name: "Carro", BudgetLimit: Money{Cents: -1}}
	if err := bad.Validate(); !errors.Is(err, ErrNegativeLimit) {
		t.Fatalf("expected ErrNegativeLimit, got %v", err)
	}
}

func TestUserValidate(t *testing.T) {
	good := User{Name: "Alex", Email: "admin@finanzas.com"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []User{
		{Name: "", Email: "a@b.com"},
		{Name: "Alex", Email: "not-an-email"},
		{Name: "Alex", Email: "@host"},
		{Name: "Alex", Email: "alex@"},
	}
	for i, u := range bads {
		if err := u.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(2025, time.April)
	if !w.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start must be inside the window")
	}
	if !w.Contains(time.Date(2025, 4, 30, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("last instant of the month must be inside")
	}
	if w.Contains(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end is exclusive")
	}
	if w.Contains(time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("previous month must be outside")
	}

	// December rolls into January of the next year.
	dec := MonthWindow(2025, time.December)
	if dec.End != time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected december end: %v", dec.End)
	}
}

func TestSignedContribution(t *testing.T) {
	m := Money{Cents: 500}
	if got := Income.Signed(m); got.Cents != 500 {
		t.Fatalf("income should stay positive, got %d", got.Cents)
	}
	if got := Expense.Signed(m); got.Cents != -500 {
		t.Fatalf("expense should negate, got %d", got.Cents)
	}
}
