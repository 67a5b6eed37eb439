package core

// CategorySpend is the EXPENSE total accumulated by one category inside a
// window, with the resolved name carried for display.
type CategorySpend struct {
	CategoryID int64
	Name       string
	Spent      Money
}

// Summary holds the derived figures for one window.
type Summary struct {
	Window       Window
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
	// SpendByCategory is keyed by category id and only contains categories
	// with at least one matching expense. No entry means zero spend.
	SpendByCategory map[int64]CategorySpend
}

// Aggregate derives totals from a loaded transaction collection. It is pure:
// no I/O, no shared state, and the result is independent of input order.
// Transactions outside the window are skipped; a zero window keeps everything.
func Aggregate(txs []Transaction, w Window) Summary {
	s := Summary{
		Window:          w,
		SpendByCategory: make(map[int64]CategorySpend),
	}
	for _, tx := range txs {
		if !w.IsZero() && !w.Contains(tx.Date) {
			continue
		}
		switch tx.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(tx.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(tx.Amount)
			entry := s.SpendByCategory[tx.CategoryID]
			entry.CategoryID = tx.CategoryID
			if tx.Category != nil {
				entry.Name = tx.Category.Name
			}
			entry.Spent = entry.Spent.Add(tx.Amount)
			s.SpendByCategory[tx.CategoryID] = entry
		}
	}
	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	return s
}

// SpentIn returns the expense total recorded for a category, treating a
// missing entry as zero spend.
func (s Summary) SpentIn(categoryID int64) Money {
	return s.SpendByCategory[categoryID].Spent
}
