package editor

import "errors"

var (
	// ErrSessionNotFound indicates an unknown or expired editor session.
	ErrSessionNotFound = errors.New("editor session not found")
	// ErrInvalidState indicates an operation not allowed in the current state.
	ErrInvalidState = errors.New("operation not allowed in current editor state")
	// ErrUnknownBlock indicates a block id the active template does not define.
	ErrUnknownBlock = errors.New("block not in template")
	// ErrUnknownField indicates a top-level form field that cannot be set.
	ErrUnknownField = errors.New("unknown form field")
	// ErrNotQuickLoggable indicates a template that the quick-log sheet cannot use.
	ErrNotQuickLoggable = errors.New("template is not available for quick log")
	// ErrStepInvalid indicates the current wizard step has validation errors.
	ErrStepInvalid = errors.New("current step has errors")
	// ErrNotWizard indicates step navigation on a non-wizard shell.
	ErrNotWizard = errors.New("editor is not a wizard")
	// ErrInvalidInput indicates bad session options.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSaveFailed wraps a persistence failure during submit.
	ErrSaveFailed = errors.New("failed to save activity")
)
