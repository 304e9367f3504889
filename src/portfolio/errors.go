package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"
)

var (
	ErrNotFound       = repository.ErrPositionSetNotFound
	ErrConflict       = repository.ErrPositionSetExists
	ErrNotImplemented = errors.New("not implemented")
)

// ValidationError reports malformed input. It is raised before any storage access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a storage failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports a missing position set, either typed or by message.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) || strings.Contains(strings.ToLower(err.Error()), "not found")
}

func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
