package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

// TransactionPatch carries the fields of a partial update. Nil means "leave
// unchanged".
type TransactionPatch struct {
	Amount     *core.Money
	Concept    *string
	Date       *time.Time
	Type       *core.TransactionType
	CategoryID *int64
}

// PendingExport is the minimal row the export worker needs to queue work.
type PendingExport struct {
	ID      int64
	Version int64
}

const txSelect = `
	SELECT t.id, t.user_id, t.amount_cents, t.concept, t.date, t.type, t.category_id,
	       c.id, c.user_id, c.name, c.icon, c.budget_limit_cents
	  FROM transactions t
	  JOIN categories c ON c.id = t.category_id`

// CreateTransaction validates the movement and its category reference, then
// inserts. The category must exist under the same owner; a foreign or missing
// category fails with ErrCategoryNotFound before anything persists.
func (r *Repository) CreateTransaction(ctx context.Context, ownerID int64, in core.Transaction) (core.Transaction, error) {
	in.UserID = ownerID
	in.Concept = strings.TrimSpace(in.Concept)
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	defer tx.Rollback()

	cat, err := getCategory(ctx, tx, ownerID, in.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, fmt.Errorf("%w: #%d", core.ErrCategoryNotFound, in.CategoryID)
		}
		return core.Transaction{}, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount_cents, concept, date, type, category_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ownerID, in.Amount.Cents, in.Concept, encodeDate(in.Date), string(in.Type), in.CategoryID)
	if err != nil {
		return core.Transaction{}, storageErr("insert transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, storageErr("transaction id", err)
	}
	if err := commit(tx); err != nil {
		return core.Transaction{}, err
	}

	in.ID = id
	in.Date = in.Date.UTC().Truncate(time.Second)
	in.Category = &cat
	slog.InfoContext(ctx, "Transaction recorded",
		"id", id, "owner", ownerID, "type", in.Type, "amount_cents", in.Amount.Cents, "category", cat.Name)
	return in, nil
}

// GetTransaction is an owner-scoped lookup with the category joined in.
func (r *Repository) GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, txSelect+` WHERE t.id = ? AND t.user_id = ?`, id, ownerID)
	out, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction #%d", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, storageErr("get transaction", err)
	}
	return out, nil
}

// GetTransactionForExport loads a row by bare id for the export pipeline,
// which runs outside any owner's session.
func (r *Repository) GetTransactionForExport(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, txSelect+` WHERE t.id = ?`, id)
	out, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction #%d", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, storageErr("get transaction for export", err)
	}
	return out, nil
}

// ListTransactions returns the owner's movements joined with their categories,
// newest first (ties broken by id, also descending). A non-zero window
// restricts to [start, end).
func (r *Repository) ListTransactions(ctx context.Context, ownerID int64, w core.Window) ([]core.Transaction, error) {
	query := txSelect + ` WHERE t.user_id = ?`
	args := []any{ownerID}
	if !w.IsZero() {
		if err := w.Validate(); err != nil {
			return nil, err
		}
		query += ` AND t.date >= ? AND t.date < ?`
		args = append(args, encodeDate(w.Start), encodeDate(w.End))
	}
	query += ` ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transactions", err)
	}
	return out, nil
}

// UpdateTransaction applies a patch with the same validation as create. A
// changed category id is re-checked against the owner. The export state is
// reset so the worker picks the new version up.
func (r *Repository) UpdateTransaction(ctx context.Context, ownerID, id int64, patch TransactionPatch) (core.Transaction, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	defer tx.Rollback()

	current, err := getOwnedTransaction(ctx, tx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if patch.Amount != nil {
		current.Amount = *patch.Amount
	}
	if patch.Concept != nil {
		current.Concept = strings.TrimSpace(*patch.Concept)
	}
	if patch.Date != nil {
		current.Date = *patch.Date
	}
	if patch.Type != nil {
		current.Type = *patch.Type
	}
	if patch.CategoryID != nil {
		current.CategoryID = *patch.CategoryID
	}
	if err := current.Validate(); err != nil {
		return core.Transaction{}, err
	}

	cat, err := getCategory(ctx, tx, ownerID, current.CategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, fmt.Errorf("%w: #%d", core.ErrCategoryNotFound, current.CategoryID)
		}
		return core.Transaction{}, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions
		    SET amount_cents = ?, concept = ?, date = ?, type = ?, category_id = ?,
		        version = version + 1, export_state = 'pending'
		  WHERE id = ? AND user_id = ?`,
		current.Amount.Cents, current.Concept, encodeDate(current.Date),
		string(current.Type), current.CategoryID, id, ownerID)
	if err != nil {
		return core.Transaction{}, storageErr("update transaction", err)
	}
	if err := commit(tx); err != nil {
		return core.Transaction{}, err
	}

	current.Date = current.Date.UTC().Truncate(time.Second)
	current.Category = &cat
	slog.InfoContext(ctx, "Transaction updated", "id", id, "owner", ownerID)
	return current, nil
}

// DeleteTransaction removes an owned movement. Transactions delete
// independently of everything else.
func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getOwnedTransaction(ctx, tx, ownerID, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return storageErr("delete transaction", err)
	}
	if err := commit(tx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner", ownerID)
	return nil
}

// PendingExports lists transactions the export worker has not written out
// yet, oldest first.
func (r *Repository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM transactions
		  WHERE export_state = 'pending' ORDER BY id LIMIT ?`, int64(limit))
	if err != nil {
		return nil, storageErr("pending exports", err)
	}
	defer rows.Close()

	var out []PendingExport
	for rows.Next() {
		var p PendingExport
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, storageErr("scan pending export", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("pending exports", err)
	}
	return out, nil
}

// MarkExported records a successful statement append.
func (r *Repository) MarkExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_state = 'exported' WHERE id = ?`, id); err != nil {
		return storageErr("mark exported", err)
	}
	slog.InfoContext(ctx, "Transaction marked exported", "id", id)
	return nil
}

// MarkExportError flags a failed append; the periodic scan will not retry it
// until it is reset to pending.
func (r *Repository) MarkExportError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET export_state = 'error' WHERE id = ?`, id); err != nil {
		return storageErr("mark export error", err)
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "id", id)
	return nil
}

func getOwnedTransaction(ctx context.Context, q querier, ownerID, id int64) (core.Transaction, error) {
	var (
		t       core.Transaction
		rawDate string
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, concept, date, type, category_id
		   FROM transactions WHERE id = ? AND user_id = ?`, id, ownerID,
	).Scan(&t.ID, &t.UserID, &t.Amount.Cents, &t.Concept, &rawDate, &t.Type, &t.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("%w: transaction #%d", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, storageErr("get transaction", err)
	}
	t.Date, err = decodeDate(rawDate)
	if err != nil {
		return core.Transaction{}, storageErr("decode date", err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		c       core.Category
		rawDate string
	)
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Amount.Cents, &t.Concept, &rawDate, &t.Type, &t.CategoryID,
		&c.ID, &c.UserID, &c.Name, &c.Icon, &c.BudgetLimit.Cents,
	); err != nil {
		return core.Transaction{}, err
	}
	date, err := decodeDate(rawDate)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = date
	t.Category = &c
	return t, nil
}
