// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses,
// and the mapping from domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"utang/internal/auth"
	"utang/internal/core"
	"utang/internal/ledger"
	applog "utang/internal/log"
	"utang/internal/services"
)

// errMalformedBody marks request bodies that could not be decoded at all.
var errMalformedBody = errors.New("malformed request body")

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Message sets a {"message": ...} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(messageBody{Message: msg})
}

type messageBody struct {
	Message string `json:"message"`
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.payload == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.payload)
}

// ErrorResponse creates a standard {"message"} error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// UnauthorizedError creates a 401 Unauthorized error response.
func UnauthorizedError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnauthorized, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// TooManyRequestsError creates a 429 Too Many Requests error response.
func TooManyRequestsError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, message)
}

// validationErrors are reported to the client verbatim with 422.
var validationErrors = []error{
	core.ErrInvalidAmount, core.ErrInvalidPrecision, core.ErrAmountOutOfRange,
	core.ErrInvalidRate, core.ErrInvalidDueDay, core.ErrInvalidCategory,
	core.ErrInvalidFrequency, core.ErrInvalidKind, core.ErrInvalidItemType,
	core.ErrEmptyName, core.ErrNameTooLong, core.ErrEmptyCategory,
	core.ErrMissingDebt, core.ErrInvalidDay, core.ErrInvalidMonth,
	core.ErrUnknownStrategy, core.ErrUnknownAllocation, services.ErrInvalidHorizon,
	auth.ErrInvalidUsername, auth.ErrWeakPassword, auth.ErrInvalidEmail,
	errInvalidField,
}

// statusFor maps an error to its HTTP status and the message safe to show.
func statusFor(err error) (int, string) {
	var fe *fieldError
	switch {
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity, fe.Error()
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, "Malformed request body"
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, ledger.ErrUsernameTaken):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Not authenticated"
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity, v.Error()
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// writeError logs server-side failures and answers with the mapped status.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		errType := applog.ErrorTypeInternal
		if errors.Is(err, core.ErrInvariant) {
			errType = applog.ErrorTypeInvariant
		}
		logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err,
			applog.FieldErrorType, errType)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldError, err)
	}
	ErrorResponse(status, msg).Write(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}
