package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

type (
	// TransactionType carries the sign of a movement. Amounts themselves
	// stay positive.
	TransactionType string

	// User anchors ownership. Every category and transaction belongs to
	// exactly one user and all store reads are filtered by that id.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
	}

	// Category is a named spending or income bucket. A zero BudgetLimit
	// means "no limit".
	Category struct {
		ID          int64
		UserID      int64
		Name        string
		Icon        string
		BudgetLimit Money
	}

	// Transaction is a single recorded movement of money. Category is the
	// resolved bucket when the record was loaded through a joined read.
	Transaction struct {
		ID         int64
		UserID     int64
		Amount     Money
		Concept    string
		Date       time.Time
		Type       TransactionType
		CategoryID int64
		Category   *Category
	}

	// Window is a half-open calendar interval [Start, End), typically one
	// month. Both bounds are UTC.
	Window struct {
		Start time.Time
		End   time.Time
	}
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Signed returns the contribution of an amount of this type to a balance.
func (t TransactionType) Signed(m Money) Money {
	if t == Expense {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	email := strings.TrimSpace(u.Email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return ErrEmptyName
	}
	if c.BudgetLimit.Cents < 0 {
		return ErrNegativeLimit
	}
	return nil
}

// HasLimit reports whether the category carries a budget ceiling. Absent and
// zero limits both mean unlimited.
func (c Category) HasLimit() bool {
	return c.BudgetLimit.Cents > 0
}

func (tx Transaction) Validate() error {
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Concept) == "" {
		return ErrEmptyConcept
	}
	if len(tx.Concept) > 200 {
		return ErrEmptyConcept
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return nil
}

// MonthWindow builds the half-open window covering one calendar month in UTC.
func MonthWindow(year int, month time.Month) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.End.After(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Contains reports whether t falls inside [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// IsZero reports whether the window is unset, meaning "no restriction".
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}
