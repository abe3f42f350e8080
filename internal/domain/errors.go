package domain

import "errors"

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrEmptyField        = errors.New("field is empty")
	ErrInvalidValue      = errors.New("invalid value")
)
