package api

import (
	"encoding/json"
	"net/http"
)

const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeAuthRequired     = "AUTHENTICATION_REQUIRED"
	CodeInvalidLogin     = "INVALID_CREDENTIALS"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternalError    = "INTERNAL_ERROR"
)

type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// additional error context
type ErrorContext map[string]interface{}

type errorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
	Context ErrorContext  `json:"context,omitempty"`
}

// Error is the wire shape of every error response.
type Error struct {
	Error errorBody `json:"error"`
}

// builder pattern
type ErrorBuilder struct {
	Code    string
	Message string
	Details []ErrorDetail
	Context ErrorContext
}

func NewError(code, message string) *ErrorBuilder {
	return &ErrorBuilder{Code: code, Message: message}
}

func (e *ErrorBuilder) WithDetails(details []ErrorDetail) *ErrorBuilder {
	e.Details = details
	return e
}

func (e *ErrorBuilder) WithContext(context ErrorContext) *ErrorBuilder {
	e.Context = context
	return e
}

func (e *ErrorBuilder) Create() Error {
	return Error{Error: errorBody{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Context: e.Context,
	}}
}

// Write sends the error with the given status.
func (e *ErrorBuilder) Write(w http.ResponseWriter, status int) {
	writeJSON(w, status, e.Create())
}

// builder pattern extensions

func Unauthorized(msg string) *ErrorBuilder {
	return NewError(CodeAuthRequired, msg)
}

func PermissionDenied(msg string) *ErrorBuilder {
	return NewError(CodePermissionDenied, msg)
}

func NotFound(resource string) *ErrorBuilder {
	return NewError(CodeResourceNotFound, resource+" not found")
}

func ValidationErr(msg string, details []ErrorDetail) *ErrorBuilder {
	return NewError(CodeValidationError, msg).WithDetails(details)
}

func InternalError(msg string) *ErrorBuilder {
	return NewError(CodeInternalError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ValidationErrorHandler renders request validator failures in the error
// shape used by the handlers.
func ValidationErrorHandler(w http.ResponseWriter, message string, statusCode int) {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		Unauthorized("Authentication required").
			WithContext(ErrorContext{"reason": message}).
			Write(w, http.StatusUnauthorized)
	case http.StatusNotFound:
		NotFound("route").Write(w, statusCode)
	default:
		ValidationErr("Request validation failed", []ErrorDetail{{Message: message}}).Write(w, statusCode)
	}
}
