package core

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Storage and transport layers map onto these
// sentinels; callers match with errors.Is.
var (
	// ErrInvalidArgument marks malformed or out-of-range input. Never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound covers both missing records and records owned by someone
	// else. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a category name is already taken
	// by the same owner.
	ErrDuplicateName = errors.New("category name already in use")

	// ErrDuplicateEmail is returned when a registration reuses an email.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrCategoryNotFound names the offending relation when a transaction
	// references a category that does not resolve under the caller's owner.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrHasDependents blocks category deletion while live transactions
	// still reference it.
	ErrHasDependents = errors.New("category has transactions")

	// ErrStorageUnavailable wraps genuine storage-layer outages. The only
	// error in the taxonomy a caller may reasonably retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Field-level validation errors. All wrap ErrInvalidArgument so callers can
// match either the precise field or the whole class.
var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	ErrEmptyConcept    = fmt.Errorf("%w: concept cannot be empty", ErrInvalidArgument)
	ErrEmptyName       = fmt.Errorf("%w: name cannot be empty", ErrInvalidArgument)
	ErrInvalidType     = fmt.Errorf("%w: type must be INCOME or EXPENSE", ErrInvalidArgument)
	ErrNegativeLimit   = fmt.Errorf("%w: budget limit cannot be negative", ErrInvalidArgument)
	ErrInvalidDate     = fmt.Errorf("%w: date cannot be zero", ErrInvalidArgument)
	ErrInvalidWindow   = fmt.Errorf("%w: window end must be after start", ErrInvalidArgument)
	ErrInvalidEmail    = fmt.Errorf("%w: email is not valid", ErrInvalidArgument)
	ErrMissingCategory = fmt.Errorf("%w: category id is required", ErrInvalidArgument)
)
