package pet

import "errors"

var (
	// ErrPetNotFound indicates the pet doesn't exist.
	ErrPetNotFound = errors.New("pet not found")
	// ErrInvalidInput indicates invalid pet input.
	ErrInvalidInput = errors.New("invalid pet input")
)
