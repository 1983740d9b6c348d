package mcp

import (
	"errors"
	"fmt"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/photo"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/domain/weight"
)

var (
	// ErrUnknownMethod is returned for a method the handler does not serve.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams is returned when params do not decode.
	ErrInvalidParams = errors.New("invalid params")
	// ErrNoTenant is returned when a call reaches a service without a tenant.
	ErrNoTenant = errors.New("no tenant in context")
)

// APIError represents an error response with a stable code.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to stable codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var verr *activity.ValidationError
	if errors.As(err, &verr) {
		return &APIError{Code: "VALIDATION_FAILED", Message: "activity has invalid blocks", Details: verr.Errors, RecoveryHint: "Fix the listed blocks and save again"}
	}

	switch {
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "METHOD_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error(), RecoveryHint: "Check parameter names and types"}
	case errors.Is(err, pet.ErrPetNotFound), errors.Is(err, activity.ErrPetNotFound):
		return &APIError{Code: "PET_NOT_FOUND", Message: "pet not found", RecoveryHint: "Call list_pets for valid ids"}
	case errors.Is(err, activity.ErrActivityNotFound):
		return &APIError{Code: "ACTIVITY_NOT_FOUND", Message: "activity not found", RecoveryHint: "Check the activity id"}
	case errors.Is(err, attachment.ErrAttachmentNotFound):
		return &APIError{Code: "ATTACHMENT_NOT_FOUND", Message: "attachment not found", RecoveryHint: "Call get_activity_attachments for valid ids"}
	case errors.Is(err, photo.ErrPhotoNotFound):
		return &APIError{Code: "PHOTO_NOT_FOUND", Message: "photo not found", RecoveryHint: "Call list_pet_photos for valid ids"}
	case errors.Is(err, template.ErrTemplateNotFound):
		return &APIError{Code: "TEMPLATE_NOT_FOUND", Message: "template not found", RecoveryHint: "Call list_templates for valid ids"}
	case errors.Is(err, editor.ErrSessionNotFound):
		return &APIError{Code: "EDITOR_SESSION_NOT_FOUND", Message: "editor session not found", RecoveryHint: "Open a new editor; its draft is restored"}
	case errors.Is(err, editor.ErrSaveFailed):
		return &APIError{Code: "SAVE_FAILED", Message: err.Error(), RecoveryHint: "The editor is back in editing; submit again"}
	case errors.Is(err, editor.ErrInvalidState):
		return &APIError{Code: "INVALID_STATE", Message: err.Error()}
	case errors.Is(err, editor.ErrNotQuickLoggable):
		return &APIError{Code: "NOT_QUICK_LOGGABLE", Message: err.Error(), RecoveryHint: "Pick a template with isQuickLogEnabled"}
	case errors.Is(err, editor.ErrNotWizard):
		return &APIError{Code: "NOT_WIZARD", Message: err.Error(), RecoveryHint: "Steps exist only in the guided shell"}
	case errors.Is(err, editor.ErrUnknownBlock):
		return &APIError{Code: "UNKNOWN_BLOCK", Message: err.Error()}
	case errors.Is(err, editor.ErrUnknownField):
		return &APIError{Code: "UNKNOWN_FIELD", Message: err.Error(), RecoveryHint: "Fields are title, description and activityDate"}
	case errors.Is(err, block.ErrUnsupportedType):
		return &APIError{Code: "UNSUPPORTED_BLOCK_TYPE", Message: err.Error()}
	case errors.Is(err, pet.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, weight.ErrInvalidInput),
		errors.Is(err, memory.ErrInvalidInput),
		errors.Is(err, editor.ErrInvalidInput),
		errors.Is(err, attachment.ErrInvalidInput),
		errors.Is(err, photo.ErrInvalidInput),
		errors.Is(err, draft.ErrInvalidContext):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

// formErrors reports form validation failures with their per-block messages.
func formErrors(sentinel error, errs form.Errors) *APIError {
	code, hint := "FORM_INVALID", "Fix the listed blocks and submit again"
	if errors.Is(sentinel, editor.ErrStepInvalid) {
		code, hint = "STEP_INVALID", "Fix the listed blocks before moving on"
	}
	return &APIError{Code: code, Message: sentinel.Error(), Details: errs, RecoveryHint: hint}
}
