package google

import (
	"context"
	"testing"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

func TestYearSheetName(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		year     int
		expected string
	}{
		{"plain base", "Statement", 2026, "2026 Statement"},
		{"already prefixed", "2025 Statement", 2026, "2025 Statement"},
		{"empty base", "", 2026, "2026"},
		{"whitespace base", "  Statement  ", 2026, "2026 Statement"},
		{"short base", "St", 2026, "2026 St"},
		{"numeric but not a year", "1234x Statement", 2026, "2026 1234x Statement"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearSheetName(tt.base, tt.year); got != tt.expected {
				t.Errorf("yearSheetName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.expected)
			}
		})
	}
}

func TestStatementRow(t *testing.T) {
	tx := core.Transaction{
		ID:      7,
		Amount:  core.Money{Cents: 12345},
		Concept: "Mercado",
		Date:    time.Date(2026, time.March, 5, 18, 30, 0, 0, time.UTC),
		Type:    core.Expense,
		Category: &core.Category{
			Name: "Comida",
		},
	}

	row := statementRow(tx)
	want := []any{"2026-03-05", "Mercado", "EXPENSE", "123.45", "Comida"}
	if len(row) != len(want) {
		t.Fatalf("row has %d cells, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestStatementRowWithoutCategory(t *testing.T) {
	tx := core.Transaction{
		Amount:  core.Money{Cents: 500},
		Concept: "Ajuste",
		Date:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Type:    core.Income,
	}

	row := statementRow(tx)
	if row[4] != "" {
		t.Errorf("category cell = %v, want empty string", row[4])
	}
}

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("NewFromEnv should fail without GOOGLE_SPREADSHEET_ID")
	}
}
