package core

const (
	BudgetUnbounded BudgetState = "UNBOUNDED"
	BudgetOK        BudgetState = "OK"
	BudgetWarning   BudgetState = "WARNING"
	BudgetExceeded  BudgetState = "EXCEEDED"
)

// Fixed policy thresholds, not configurable per category. Extension point if
// per-category thresholds are ever wanted.
const (
	budgetWarningPercent  = 75
	budgetExceededPercent = 100
)

// BudgetState classifies utilization of a category's budget limit.
type BudgetState string

// BudgetStatus is the evaluated utilization of one category in one window.
type BudgetStatus struct {
	CategoryID int64
	Name       string
	Limit      Money
	Spent      Money
	// Percentage is spent/limit*100, truncated, clamped to 100. Always 0
	// for unbounded categories. Stays below 100 until the limit is reached,
	// so it never contradicts State.
	Percentage int
	State      BudgetState
}

// EvaluateBudget combines a category's configured limit with its window spend.
// Pure and division-safe: a category without a limit is never divided by.
// State boundaries are decided on cents, so classification does not depend on
// how Percentage was rounded.
func EvaluateBudget(c Category, spent Money) BudgetStatus {
	status := BudgetStatus{
		CategoryID: c.ID,
		Name:       c.Name,
		Limit:      c.BudgetLimit,
		Spent:      spent,
	}
	if !c.HasLimit() {
		status.State = BudgetUnbounded
		return status
	}

	limit := c.BudgetLimit.Cents
	pct := spent.Cents * 100 / limit
	if pct > budgetExceededPercent {
		pct = budgetExceededPercent
	}
	if pct < 0 {
		pct = 0
	}
	status.Percentage = int(pct)

	switch {
	case spent.Cents >= limit:
		status.State = BudgetExceeded
	case spent.Cents*100 > limit*budgetWarningPercent:
		status.State = BudgetWarning
	default:
		status.State = BudgetOK
	}
	return status
}
