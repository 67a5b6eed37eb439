// Package storage is the SQLite-backed store for users, categories and
// transactions. Every read and write is scoped by owner id; a row under a
// different owner is reported exactly like a missing row. Each exported
// method runs as a single database transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/core"

	_ "modernc.org/sqlite"
)

// dateFormat is the canonical stored representation: UTC RFC3339 at second
// precision. Fixed width keeps lexicographic and chronological order equal.
const dateFormat = time.RFC3339

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serializes writers anyway; a single pooled connection also keeps
	// :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used as a readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %v", core.ErrStorageUnavailable, err)
	}
	return nil
}

// begin opens the single logical transaction every exported method runs in.
func (r *Repository) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", core.ErrStorageUnavailable, err)
	}
	return tx, nil
}

func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", core.ErrStorageUnavailable, err)
	}
	return nil
}

// storageErr wraps an unexpected driver failure. Domain errors pass through
// untouched so callers can still match them.
func storageErr(op string, err error) error {
	if isDomainErr(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", core.ErrStorageUnavailable, op, err)
}

func isDomainErr(err error) bool {
	for _, domain := range []error{
		core.ErrInvalidArgument,
		core.ErrNotFound,
		core.ErrDuplicateName,
		core.ErrDuplicateEmail,
		core.ErrCategoryNotFound,
		core.ErrHasDependents,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}

// isUniqueViolation distinguishes the driver's uniqueness-constraint signal
// from other failures.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func encodeDate(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(dateFormat)
}

func decodeDate(s string) (time.Time, error) {
	return time.Parse(dateFormat, s)
}

// CreateUser registers a new user. The password hash is opaque to storage.
func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if u.PasswordHash == "" {
		return core.User{}, fmt.Errorf("%w: password hash is required", core.ErrInvalidArgument)
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return core.User{}, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		strings.TrimSpace(u.Name), strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("%w: %s", core.ErrDuplicateEmail, u.Email)
		}
		return core.User{}, storageErr("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, storageErr("user id", err)
	}
	if err := commit(tx); err != nil {
		return core.User{}, err
	}

	u.ID = id
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return u, nil
}

// GetUserByEmail is the login lookup. Email matching is case-insensitive.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("%w: user %s", core.ErrNotFound, email)
	}
	if err != nil {
		return core.User{}, storageErr("get user by email", err)
	}
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("%w: user #%d", core.ErrNotFound, id)
	}
	if err != nil {
		return core.User{}, storageErr("get user", err)
	}
	return u, nil
}
