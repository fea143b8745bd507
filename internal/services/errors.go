package services

import "errors"

var (
	// ErrInvalidInput marks missing or malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a referenced chat or user that does not exist.
	ErrNotFound = errors.New("not found")
)
