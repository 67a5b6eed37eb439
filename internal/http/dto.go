package http

import (
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
	"github.com/alexhdezf18/finanzas-pro-check/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// categoryRequest doubles as create and patch payload. Nil fields are left
// unchanged on update.
type categoryRequest struct {
	Name        *string     `json:"name"`
	Icon        *string     `json:"icon"`
	BudgetLimit *core.Money `json:"budgetLimit"`
}

type categoryResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Icon        string      `json:"icon,omitempty"`
	BudgetLimit *core.Money `json:"budgetLimit,omitempty"`
}

type transactionRequest struct {
	Amount     *core.Money `json:"amount"`
	Concept    *string     `json:"concept"`
	Date       *string     `json:"date"`
	Type       *string     `json:"type"`
	CategoryID *int64      `json:"categoryId"`
}

type transactionResponse struct {
	ID         int64             `json:"id"`
	Amount     core.Money        `json:"amount"`
	Concept    string            `json:"concept"`
	Date       string            `json:"date"`
	Type       string            `json:"type"`
	CategoryID int64             `json:"categoryId"`
	Category   *categoryResponse `json:"category,omitempty"`
}

type budgetLineResponse struct {
	CategoryID int64       `json:"categoryId"`
	Name       string      `json:"name"`
	Limit      *core.Money `json:"limit,omitempty"`
	Spent      core.Money  `json:"spent"`
	Percentage int         `json:"percentage"`
	State      string      `json:"state"`
}

type monthlyReportResponse struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	TotalIncome  core.Money           `json:"totalIncome"`
	TotalExpense core.Money           `json:"totalExpense"`
	Balance      core.Money           `json:"balance"`
	Budgets      []budgetLineResponse `json:"budgets"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toCategoryResponse(c core.Category) categoryResponse {
	out := categoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon}
	if c.HasLimit() {
		limit := c.BudgetLimit
		out.BudgetLimit = &limit
	}
	return out
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	out := transactionResponse{
		ID:         t.ID,
		Amount:     t.Amount,
		Concept:    t.Concept,
		Date:       t.Date.UTC().Format(time.RFC3339),
		Type:       string(t.Type),
		CategoryID: t.CategoryID,
	}
	if t.Category != nil {
		cat := toCategoryResponse(*t.Category)
		out.Category = &cat
	}
	return out
}

func toMonthlyReportResponse(r services.MonthlyReport) monthlyReportResponse {
	out := monthlyReportResponse{
		Year:         r.Year,
		Month:        int(r.Month),
		TotalIncome:  r.Summary.TotalIncome,
		TotalExpense: r.Summary.TotalExpense,
		Balance:      r.Summary.Balance,
		Budgets:      make([]budgetLineResponse, 0, len(r.Budgets)),
	}
	for _, b := range r.Budgets {
		line := budgetLineResponse{
			CategoryID: b.CategoryID,
			Name:       b.Name,
			Spent:      b.Spent,
			Percentage: b.Percentage,
			State:      string(b.State),
		}
		if b.Limit.Cents > 0 {
			limit := b.Limit
			line.Limit = &limit
		}
		out.Budgets = append(out.Budgets, line)
	}
	return out
}
