// Package api provides validation utilities for API request handling.
package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxQueryLength bounds the query text accepted by the search endpoint.
const maxQueryLength = 4096

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateDocumentID validates a document ID
func ValidateDocumentID(documentID string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if documentID == "" {
		result.AddError("id", "Document ID is required")
		return result
	}

	if strings.TrimSpace(documentID) != documentID {
		result.AddError("id", "Document ID cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateSearchRequest validates a search request body
func ValidateSearchRequest(req *SearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Query) > maxQueryLength {
		result.AddError("query", "Query cannot be longer than "+strconv.Itoa(maxQueryLength)+" bytes")
	}
	if req.Page < 0 {
		result.AddError("page", "Page number must be greater than 0")
	}
	if req.PageSize < 0 {
		result.AddError("page_size", "Page size must be greater than 0")
	}

	return result
}

// ParsePagination reads the page and page_size query parameters.
// Missing values are returned as 0 so the engine applies its defaults.
func ParsePagination(c *gin.Context) (page, pageSize int, result *ValidationResult) {
	result = &ValidationResult{Valid: true}
	page = parsePositiveParam(c, "page", result)
	pageSize = parsePositiveParam(c, "page_size", result)
	return page, pageSize, result
}

func parsePositiveParam(c *gin.Context, name string, result *ValidationResult) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		result.AddError(name, "Must be an integer")
		return 0
	}
	if n < 1 {
		result.AddError(name, "Must be greater than 0")
		return 0
	}
	return n
}
