package memory

import "errors"

var (
	// ErrInvalidInput indicates a missing pet, category, brand or template.
	ErrInvalidInput = errors.New("invalid input")
)
