package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"
)

// CategoryPatch carries the fields of a partial update. Nil means "leave
// unchanged".
type CategoryPatch struct {
	Name        *string
	Icon        *string
	BudgetLimit *core.Money
}

// CreateCategory inserts a category for the owner. The (owner, name) pair is
// unique; a collision fails with ErrDuplicateName before anything persists.
func (r *Repository) CreateCategory(ctx context.Context, ownerID int64, c core.Category) (core.Category, error) {
	c.UserID = ownerID
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return core.Category{}, err
	}
	defer tx.Rollback()

	if err := checkNameFree(ctx, tx, ownerID, c.Name, 0); err != nil {
		return core.Category{}, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, icon, budget_limit_cents) VALUES (?, ?, ?, ?)`,
		ownerID, c.Name, c.Icon, c.BudgetLimit.Cents)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("%w: %q", core.ErrDuplicateName, c.Name)
		}
		return core.Category{}, storageErr("insert category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, storageErr("category id", err)
	}
	if err := commit(tx); err != nil {
		return core.Category{}, err
	}

	c.ID = id
	slog.InfoContext(ctx, "Category created",
		"id", c.ID, "owner", ownerID, "name", c.Name, "limit_cents", c.BudgetLimit.Cents)
	return c, nil
}

// GetCategory is an owner-scoped lookup. A category under another owner is
// reported as not found.
func (r *Repository) GetCategory(ctx context.Context, ownerID, id int64) (core.Category, error) {
	return getCategory(ctx, r.db, ownerID, id)
}

// querier lets lookups run either on the pool or inside an open transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getCategory(ctx context.Context, q querier, ownerID, id int64) (core.Category, error) {
	var c core.Category
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, name, icon, budget_limit_cents
		   FROM categories WHERE id = ? AND user_id = ?`, id, ownerID,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.BudgetLimit.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("%w: category #%d", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Category{}, storageErr("get category", err)
	}
	return c, nil
}

// ListCategories returns every category of the owner, ordered by id so one
// read is always stable.
func (r *Repository) ListCategories(ctx context.Context, ownerID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, icon, budget_limit_cents
		   FROM categories WHERE user_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.BudgetLimit.Cents); err != nil {
			return nil, storageErr("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list categories", err)
	}
	return out, nil
}

// UpdateCategory applies a patch and re-validates the same constraints as
// create, including the per-owner name uniqueness.
func (r *Repository) UpdateCategory(ctx context.Context, ownerID, id int64, patch CategoryPatch) (core.Category, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return core.Category{}, err
	}
	defer tx.Rollback()

	c, err := getCategory(ctx, tx, ownerID, id)
	if err != nil {
		return core.Category{}, err
	}

	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Icon != nil {
		c.Icon = *patch.Icon
	}
	if patch.BudgetLimit != nil {
		c.BudgetLimit = *patch.BudgetLimit
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if patch.Name != nil {
		if err := checkNameFree(ctx, tx, ownerID, c.Name, id); err != nil {
			return core.Category{}, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, budget_limit_cents = ?
		  WHERE id = ? AND user_id = ?`,
		c.Name, c.Icon, c.BudgetLimit.Cents, id, ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("%w: %q", core.ErrDuplicateName, c.Name)
		}
		return core.Category{}, storageErr("update category", err)
	}
	if err := commit(tx); err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category updated", "id", id, "owner", ownerID, "name", c.Name)
	return c, nil
}

// DeleteCategory removes a category with no live transactions. Deletion never
// cascades: dependents block it with ErrHasDependents.
func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id int64) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := getCategory(ctx, tx, ownerID, id); err != nil {
		return err
	}

	var dependents int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ? AND user_id = ?`,
		id, ownerID).Scan(&dependents)
	if err != nil {
		return storageErr("count dependents", err)
	}
	if dependents > 0 {
		return fmt.Errorf("%w: category #%d has %d transactions", core.ErrHasDependents, id, dependents)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, ownerID); err != nil {
		return storageErr("delete category", err)
	}
	if err := commit(tx); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted", "id", id, "owner", ownerID)
	return nil
}

// checkNameFree enforces per-owner name uniqueness before mutating. excludeID
// lets an update keep its own name.
func checkNameFree(ctx context.Context, q querier, ownerID int64, name string, excludeID int64) error {
	var existing int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE user_id = ? AND name = ?`, ownerID, name,
	).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return storageErr("check category name", err)
	}
	if existing != excludeID {
		return fmt.Errorf("%w: %q", core.ErrDuplicateName, name)
	}
	return nil
}
