package catalog

import (
	"errors"
	"fmt"

	"storefront/internal/auth"
	"storefront/internal/store"
)

var (
	ErrValidation   = errors.New("invalid fields")
	ErrUnauthorized = auth.ErrUnauthorized
	ErrNotFound     = errors.New("product not found")
	ErrConflict     = store.ErrConflict
	ErrStorage      = store.ErrStorage
)

// FieldError names the input field that failed validation. It matches ErrValidation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }
