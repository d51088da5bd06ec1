package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState marks an operation issued outside the session state
	// that permits it.
	ErrInvalidState = errors.New("operation not allowed in current session state")
	// ErrStaleSession marks a reference to results that no longer exist.
	ErrStaleSession = errors.New("session results are stale")
	// ErrCategoryNotFound marks a selection of an unknown category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrLoadFailed marks a category whose indexes could not be loaded.
	ErrLoadFailed = errors.New("index load failed")
	// ErrAllIndexesFailed marks a search that could not be attempted against
	// any loaded index.
	ErrAllIndexesFailed = errors.New("all indexes failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
