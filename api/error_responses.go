package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/gcbaptista/go-tfidf-search/internal/errors"
)

// ErrorCode is the machine-readable reason carried by every error response.
type ErrorCode string

const (
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrorCodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"

	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrorCodeSearchFailed       ErrorCode = "SEARCH_FAILED"
	ErrorCodeIndexingFailed     ErrorCode = "INDEXING_FAILED"
	ErrorCodePersistenceFailed  ErrorCode = "PERSISTENCE_FAILED"
	ErrorCodeJobExecutionFailed ErrorCode = "JOB_EXECUTION_FAILED"
	ErrorCodeNotSupported       ErrorCode = "NOT_SUPPORTED"
)

// ErrorDetail points at one offending input field.
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// APIError is the body of every non-2xx response.
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   []ErrorDetail `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// SendError writes an APIError tagged with the request id.
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...ErrorDetail) {
	c.AbortWithStatusJSON(statusCode, &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
		RequestID: c.GetString(requestIDKey),
	})
}

// SendAppError answers with the status and code implied by err.
// fallback is used for errors that are the server's fault.
func SendAppError(c *gin.Context, fallback ErrorCode, err error) {
	status := apperrors.HTTPStatusCode(err)

	var (
		validationErr *apperrors.ValidationError
		documentErr   *apperrors.DocumentNotFoundError
		jobErr        *apperrors.JobNotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		result := &ValidationResult{Valid: true}
		result.AddError(validationErr.Field, validationErr.Message)
		SendValidationError(c, result)
	case errors.As(err, &documentErr):
		SendError(c, status, ErrorCodeDocumentNotFound, "Document '"+documentErr.DocumentID+"' not found")
	case errors.As(err, &jobErr):
		SendError(c, status, ErrorCodeJobNotFound, "Job '"+jobErr.JobID+"' not found")
	default:
		SendError(c, status, fallback, err.Error())
	}
}

// SendValidationError reports every failed field of result.
func SendValidationError(c *gin.Context, result *ValidationResult) {
	details := make([]ErrorDetail, 0, len(result.Errors))
	for _, fieldErr := range result.Errors {
		details = append(details, ErrorDetail{
			Field:   fieldErr.Field,
			Message: fieldErr.Message,
			Code:    "VALIDATION_ERROR",
		})
	}
	SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed", details...)
}

// SendInvalidJSONError reports a body that could not be bound.
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON in request body: "+err.Error())
}
