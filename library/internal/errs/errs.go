package errs

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrOutOfStock   = errors.New("no copies available")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("invalid username or password")
)
