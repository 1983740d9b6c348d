package block

import (
	"errors"
	"strings"
)

var (
	// ErrUnsupportedType indicates a block type with no schema.
	ErrUnsupportedType = errors.New("unsupported block type")
	// ErrSchema indicates the embedded schema failed to compile.
	ErrSchema = errors.New("invalid block schema")
)

// MsgRequired is shown next to a required block left empty.
const MsgRequired = "This field is required"

// FieldError is a validation message scoped to one input.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Result is the outcome of a safe parse. It never carries a Go error.
type Result struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Message joins the field errors for single-line display.
func (r Result) Message() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

func failure(errs ...FieldError) Result {
	return Result{Success: false, Errors: errs}
}

func fieldErr(path, msg string) FieldError {
	return FieldError{Path: path, Message: msg}
}
