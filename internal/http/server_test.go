package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/identity"
	"github.com/alexhdezf18/finanzas-pro-check/internal/services"
	"github.com/alexhdezf18/finanzas-pro-check/internal/storage"
)

const testSecret = "server-test-secret-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewRepository(":memory:")
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}

	auth := identity.NewService(repo, testSecret, time.Hour)
	ledger := services.NewLedgerService(repo, nil)
	reports := services.NewReportService(repo)

	s := NewServer(":0", auth, ledger, reports, repo.Ping)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		_ = repo.Close()
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerAndLogin(t *testing.T, s *Server, email string) string {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}

	session := decodeBody[sessionResponse](t, rec)
	if session.Token == "" {
		t.Fatal("login returned no token")
	}
	return session.Token
}

func createCategory(t *testing.T, s *Server, token, name string, budgetLimit string) categoryResponse {
	t.Helper()
	body := map[string]any{"name": name}
	if budgetLimit != "" {
		body["budgetLimit"] = budgetLimit
	}
	rec := doJSON(t, s, http.MethodPost, "/api/categories", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[categoryResponse](t, rec)
}

func createTransaction(t *testing.T, s *Server, token string, body map[string]any) transactionResponse {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction returned %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[transactionResponse](t, rec)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Errorf("readyz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		body := map[string]string{"name": "A", "email": "dup@example.com", "password": "secret123"}
		if rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", body); rec.Code != http.StatusCreated {
			t.Fatalf("first register returned %d", rec.Code)
		}
		if rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", body); rec.Code != http.StatusConflict {
			t.Errorf("duplicate register returned %d, want 409", rec.Code)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		body := map[string]string{"name": "B", "email": "short@example.com", "password": "123"}
		if rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", body); rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("short password returned %d, want 422", rec.Code)
		}
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("malformed body returned %d, want 400", rec.Code)
		}
	})
}

func TestLoginFailures(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "login@example.com")

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "login@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password returned %d, want 401", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email returned %d, want 401", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	if rec := doJSON(t, s, http.MethodGet, "/api/categories", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token returned %d, want 401", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/categories", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token returned %d, want 401", rec.Code)
	}
}

func TestCategoryCRUD(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "categories@example.com")

	created := createCategory(t, s, token, "Comida", "200.00")
	if created.Name != "Comida" {
		t.Fatalf("created category = %+v", created)
	}
	if created.BudgetLimit == nil || created.BudgetLimit.Cents != 20000 {
		t.Fatalf("budget limit = %+v, want 20000 cents", created.BudgetLimit)
	}

	t.Run("duplicate name conflicts", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/categories", token, map[string]any{"name": "Comida"})
		if rec.Code != http.StatusConflict {
			t.Errorf("duplicate name returned %d, want 409", rec.Code)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/categories", token, map[string]any{"name": "   "})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("empty name returned %d, want 422", rec.Code)
		}
	})

	t.Run("get and list", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/%d", created.ID), token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get returned %d", rec.Code)
		}
		got := decodeBody[categoryResponse](t, rec)
		if got.ID != created.ID || got.Name != "Comida" {
			t.Errorf("get = %+v", got)
		}

		rec = doJSON(t, s, http.MethodGet, "/api/categories", token, nil)
		list := decodeBody[[]categoryResponse](t, rec)
		if len(list) != 1 {
			t.Errorf("list has %d entries, want 1", len(list))
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/categories/%d", created.ID), token,
			map[string]any{"icon": "🍔", "budgetLimit": "250.00"})
		if rec.Code != http.StatusOK {
			t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeBody[categoryResponse](t, rec)
		if got.Icon != "🍔" || got.BudgetLimit == nil || got.BudgetLimit.Cents != 25000 {
			t.Errorf("update = %+v", got)
		}
		if got.Name != "Comida" {
			t.Errorf("partial update must keep name, got %q", got.Name)
		}
	})

	t.Run("delete blocked by dependents", func(t *testing.T) {
		createTransaction(t, s, token, map[string]any{
			"amount": "10.00", "concept": "Almuerzo", "date": "2026-03-05",
			"type": "EXPENSE", "categoryId": created.ID,
		})

		rec := doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/categories/%d", created.ID), token, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("delete with dependents returned %d, want 409", rec.Code)
		}
	})

	t.Run("missing category is 404", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/categories/999", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("missing category returned %d, want 404", rec.Code)
		}
	})
}

func TestTransactionEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "transactions@example.com")
	cat := createCategory(t, s, token, "Carro", "")

	t.Run("unknown category is 404", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
			"amount": "10.00", "concept": "Taxi", "date": "2026-03-05",
			"type": "EXPENSE", "categoryId": 999,
		})
		if rec.Code != http.StatusNotFound {
			t.Errorf("unknown category returned %d, want 404", rec.Code)
		}
	})

	t.Run("zero amount is 422", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
			"amount": "0", "concept": "Nada", "date": "2026-03-05",
			"type": "EXPENSE", "categoryId": cat.ID,
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("zero amount returned %d, want 422", rec.Code)
		}
	})

	t.Run("bad type is 422", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, map[string]any{
			"amount": "10.00", "concept": "Taxi", "date": "2026-03-05",
			"type": "TRANSFER", "categoryId": cat.ID,
		})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("bad type returned %d, want 422", rec.Code)
		}
	})

	created := createTransaction(t, s, token, map[string]any{
		"amount": "55.50", "concept": "Gasolina", "date": "2026-03-10",
		"type": "EXPENSE", "categoryId": cat.ID,
	})
	if created.Amount.Cents != 5550 || created.Category == nil || created.Category.Name != "Carro" {
		t.Fatalf("created transaction = %+v", created)
	}

	t.Run("month filter", func(t *testing.T) {
		createTransaction(t, s, token, map[string]any{
			"amount": "20.00", "concept": "Peaje abril", "date": "2026-04-01",
			"type": "EXPENSE", "categoryId": cat.ID,
		})

		rec := doJSON(t, s, http.MethodGet, "/api/transactions?year=2026&month=3", token, nil)
		list := decodeBody[[]transactionResponse](t, rec)
		if len(list) != 1 || list[0].Concept != "Gasolina" {
			t.Errorf("march listing = %+v", list)
		}

		rec = doJSON(t, s, http.MethodGet, "/api/transactions", token, nil)
		if list := decodeBody[[]transactionResponse](t, rec); len(list) != 2 {
			t.Errorf("unfiltered listing has %d entries, want 2", len(list))
		}

		rec = doJSON(t, s, http.MethodGet, "/api/transactions?year=2026&month=13", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("month 13 returned %d, want 400", rec.Code)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/transactions/%d", created.ID), token,
			map[string]any{"amount": "60.00"})
		if rec.Code != http.StatusOK {
			t.Fatalf("update returned %d: %s", rec.Code, rec.Body.String())
		}
		got := decodeBody[transactionResponse](t, rec)
		if got.Amount.Cents != 6000 || got.Concept != "Gasolina" {
			t.Errorf("update = %+v", got)
		}

		rec = doJSON(t, s, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
		if rec.Code != http.StatusNoContent {
			t.Errorf("delete returned %d, want 204", rec.Code)
		}
		rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("deleted transaction returned %d, want 404", rec.Code)
		}
	})
}

func TestOwnersAreIsolated(t *testing.T) {
	s := newTestServer(t)
	alice := registerAndLogin(t, s, "alice@example.com")
	bob := registerAndLogin(t, s, "bob@example.com")

	cat := createCategory(t, s, alice, "Regalos", "")

	if rec := doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/categories/%d", cat.ID), bob, nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign category returned %d, want 404", rec.Code)
	}

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", bob, map[string]any{
		"amount": "10.00", "concept": "Regalo ajeno", "date": "2026-03-05",
		"type": "EXPENSE", "categoryId": cat.ID,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign category reference returned %d, want 404", rec.Code)
	}
}

func TestMonthlyReport(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "report@example.com")

	salary := createCategory(t, s, token, "Sueldo", "")
	food := createCategory(t, s, token, "Comida", "200.00")

	createTransaction(t, s, token, map[string]any{
		"amount": "1000.00", "concept": "Salario", "date": "2026-03-01",
		"type": "INCOME", "categoryId": salary.ID,
	})
	createTransaction(t, s, token, map[string]any{
		"amount": "50.00", "concept": "Mercado", "date": "2026-03-03",
		"type": "EXPENSE", "categoryId": food.ID,
	})

	rec := doJSON(t, s, http.MethodGet, "/api/reports/monthly?year=2026&month=3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report returned %d: %s", rec.Code, rec.Body.String())
	}
	report := decodeBody[monthlyReportResponse](t, rec)

	if report.TotalIncome.Cents != 100000 || report.TotalExpense.Cents != 5000 || report.Balance.Cents != 95000 {
		t.Errorf("report totals = %+v", report)
	}
	if len(report.Budgets) != 2 {
		t.Fatalf("report has %d budget lines, want 2", len(report.Budgets))
	}
	for _, b := range report.Budgets {
		switch b.CategoryID {
		case salary.ID:
			if b.State != "UNBOUNDED" {
				t.Errorf("salary state = %q, want UNBOUNDED", b.State)
			}
		case food.ID:
			if b.State != "OK" || b.Percentage != 25 || b.Spent.Cents != 5000 {
				t.Errorf("food line = %+v", b)
			}
		}
	}

	t.Run("cache invalidated by writes", func(t *testing.T) {
		// Warm the cache, then write and re-read.
		doJSON(t, s, http.MethodGet, "/api/reports/monthly?year=2026&month=3", token, nil)

		createTransaction(t, s, token, map[string]any{
			"amount": "160.00", "concept": "Restaurante", "date": "2026-03-20",
			"type": "EXPENSE", "categoryId": food.ID,
		})

		rec := doJSON(t, s, http.MethodGet, "/api/reports/monthly?year=2026&month=3", token, nil)
		report := decodeBody[monthlyReportResponse](t, rec)
		if report.TotalExpense.Cents != 21000 {
			t.Errorf("post-write expense = %d, want 21000", report.TotalExpense.Cents)
		}
		for _, b := range report.Budgets {
			if b.CategoryID == food.ID {
				if b.State != "EXCEEDED" || b.Percentage != 100 {
					t.Errorf("food line after overspend = %+v", b)
				}
			}
		}
	})
}

func TestRateLimiter(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{"email": "x@example.com", "password": "wrong"}
	var last int
	for i := 0; i < 61; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, body))
		req.Header.Set("X-Forwarded-For", "10.0.0.9")
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("61st request returned %d, want 429", last)
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return &buf
}
