package models

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors shared by the store, the services and the HTTP layer.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")

	// Conflicts. They leave the ledger untouched.
	ErrDuplicateParticipant = errors.New("this user is already a participant for the expense")
	ErrOverAllocation       = errors.New("total of participant amounts would exceed the expense amount")
	ErrEmailTaken           = errors.New("the email has already been taken")
	ErrCategoryExists       = errors.New("the category name has already been taken")
	ErrSelfDelete           = errors.New("you cannot delete your own account")
)

// ValidationError collects per-field messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError with a single field message.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add records msg for field.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Empty reports whether no field failed.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, strings.Join(v.Fields[k], ", "))
	}
	return strings.Join(msgs, "; ")
}

func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsConflict reports whether err is one of the state conflicts above.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateParticipant) ||
		errors.Is(err, ErrOverAllocation) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrCategoryExists) ||
		errors.Is(err, ErrSelfDelete)
}
