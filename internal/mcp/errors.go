package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/billable/internal/apperr"
)

// Stable error codes reported to tool callers.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeState         = "STATE_ERROR"
	CodeConflict      = "CONFLICT"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidParams = "INVALID_PARAMS"
	CodeUnknownMethod = "UNKNOWN_METHOD"
	CodeInternal      = "INTERNAL_ERROR"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unclassified errors
// return nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch apperr.Kind(err) {
	case apperr.ErrValidation:
		out := &APIError{Code: CodeValidation, Message: "validation failed", RecoveryHint: "Fix the listed fields and retry"}
		var v *apperr.ValidationError
		if errors.As(err, &v) {
			out.Details = v.Fields
		}
		return out
	case apperr.ErrState:
		return &APIError{Code: CodeState, Message: err.Error()}
	case apperr.ErrConflict:
		return &APIError{Code: CodeConflict, Message: err.Error()}
	case apperr.ErrNotFound:
		return &APIError{Code: CodeNotFound, Message: err.Error(), RecoveryHint: "Check ID spelling"}
	default:
		return nil
	}
}

func invalidParams(err error) *APIError {
	return &APIError{Code: CodeInvalidParams, Message: err.Error()}
}
