package activity

import "errors"

var (
	// ErrActivityNotFound indicates the activity doesn't exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidInput indicates invalid activity input.
	ErrInvalidInput = errors.New("invalid activity input")
	// ErrPetNotFound indicates the activity references a missing pet.
	ErrPetNotFound = errors.New("pet not found")
)
