package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrStockExceeded indicates a requested quantity is above the available stock.
	ErrStockExceeded = errors.New("stock exceeded")
	// ErrInvalidInput is wrapped by service-level validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
