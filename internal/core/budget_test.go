package core

import "testing"

func TestEvaluateBudgetUnbounded(t *testing.T) {
	noLimit := Category{ID: 1, Name: "Sueldo"}
	for _, spent := range []int64{0, 100, 1_000_000} {
		st := EvaluateBudget(noLimit, Money{Cents: spent})
		if st.State != BudgetUnbounded {
			t.Fatalf("spent=%d expected UNBOUNDED, got %s", spent, st.State)
		}
		if st.Percentage != 0 {
			t.Fatalf("spent=%d unbounded percentage must be 0, got %d", spent, st.Percentage)
		}
	}
}

func TestEvaluateBudgetThresholds(t *testing.T) {
	limit := Category{ID: 2, Name: "Comida", BudgetLimit: Money{Cents: 20000}}
	cases := []struct {
		spent int64
		state BudgetState
		pct   int
	}{
		{0, BudgetOK, 0},
		{10000, BudgetOK, 50},
		{15000, BudgetOK, 75},    // exactly 75% is still OK
		{15001, BudgetWarning, 75},
		{19999, BudgetWarning, 99},
		{20000, BudgetExceeded, 100},
		{21000, BudgetExceeded, 100}, // clamped
		{900000, BudgetExceeded, 100},
	}
	for _, tc := range cases {
		st := EvaluateBudget(limit, Money{Cents: tc.spent})
		if st.State != tc.state {
			t.Fatalf("spent=%d expected state %s, got %s", tc.spent, tc.state, st.State)
		}
		if st.Percentage != tc.pct {
			t.Fatalf("spent=%d expected %d%%, got %d%%", tc.spent, tc.pct, st.Percentage)
		}
	}
}

// Scenario: Food with a 200 limit and expenses of 50, 60 and 100 in the same
// month ends at 210 spent, 100% and EXCEEDED.
func TestEvaluateBudgetOverspentMonth(t *testing.T) {
	food := &Category{ID: 3, Name: "Food", Icon: "🍔", BudgetLimit: Money{Cents: 20000}}
	txs := []Transaction{
		expenseTx(5000, 2, food),
		expenseTx(6000, 9, food),
		expenseTx(10000, 27, food),
	}
	s := Aggregate(txs, MonthWindow(2025, 4))
	if got := s.SpentIn(food.ID); got.Cents != 21000 {
		t.Fatalf("expected 21000 cents spent, got %d", got.Cents)
	}
	st := EvaluateBudget(*food, s.SpentIn(food.ID))
	if st.Percentage != 100 || st.State != BudgetExceeded {
		t.Fatalf("expected 100%%/EXCEEDED, got %d%%/%s", st.Percentage, st.State)
	}
	if st.Limit.Cents != 20000 || st.Spent.Cents != 21000 {
		t.Fatalf("status must carry limit and spend: %+v", st)
	}
}
