package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTaskNotFound       = errors.New("task not found")

	// ErrStore wraps unexpected persistence failures so raw gorm errors
	// never reach the HTTP layer.
	ErrStore = errors.New("store error")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func storeError(err error) error {
	return fmt.Errorf("%w: %v", ErrStore, err)
}
