package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}

	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(result.Errors))
	}

	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}

	if result.Errors[0].Message != "error message" {
		t.Errorf("Expected message 'error message', got '%s'", result.Errors[0].Message)
	}
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}

	if result.HasErrors() {
		t.Error("Expected HasErrors to be false for empty result")
	}

	result.AddError("field", "message")

	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true after adding error")
	}
}

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name       string
		documentID string
		wantValid  bool
		wantError  string
	}{
		{
			name:       "valid document ID",
			documentID: "/srv/corpus/notes/go.md",
			wantValid:  true,
		},
		{
			name:       "path with inner spaces",
			documentID: "/srv/corpus/my notes.txt",
			wantValid:  true,
		},
		{
			name:       "empty document ID",
			documentID: "",
			wantValid:  false,
			wantError:  "Document ID is required",
		},
		{
			name:       "document ID with leading whitespace",
			documentID: " /srv/corpus/a.txt",
			wantValid:  false,
			wantError:  "Document ID cannot have leading or trailing whitespace",
		},
		{
			name:       "document ID with trailing whitespace",
			documentID: "/srv/corpus/a.txt ",
			wantValid:  false,
			wantError:  "Document ID cannot have leading or trailing whitespace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateDocumentID(tt.documentID)

			if result.Valid != tt.wantValid {
				t.Errorf("ValidateDocumentID() Valid = %v, want %v", result.Valid, tt.wantValid)
			}

			if !tt.wantValid && len(result.Errors) > 0 {
				if result.Errors[0].Message != tt.wantError {
					t.Errorf("ValidateDocumentID() error = %v, want %v", result.Errors[0].Message, tt.wantError)
				}
			}
		})
	}
}

func TestValidateSearchRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        SearchRequest
		wantFields []string
	}{
		{"plain query", SearchRequest{Query: "cat dog"}, nil},
		{"empty query", SearchRequest{}, nil},
		{"explicit paging", SearchRequest{Query: "cat", Page: 3, PageSize: 50}, nil},
		{"negative page", SearchRequest{Query: "cat", Page: -1}, []string{"page"}},
		{"negative page size", SearchRequest{Query: "cat", PageSize: -1}, []string{"page_size"}},
		{"oversized query", SearchRequest{Query: strings.Repeat("q", maxQueryLength+1)}, []string{"query"}},
		{"everything wrong", SearchRequest{Query: strings.Repeat("q", maxQueryLength+1), Page: -2, PageSize: -2}, []string{"query", "page", "page_size"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateSearchRequest(&tt.req)

			if len(result.Errors) != len(tt.wantFields) {
				t.Fatalf("ValidateSearchRequest() got %d errors %v, want fields %v", len(result.Errors), result.Errors, tt.wantFields)
			}
			for i, field := range tt.wantFields {
				if result.Errors[i].Field != field {
					t.Errorf("error %d field = %q, want %q", i, result.Errors[i].Field, field)
				}
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantErrors   int
	}{
		{"no parameters", "", 0, 0, 0},
		{"both given", "?page=2&page_size=10", 2, 10, 0},
		{"page only", "?page=4", 4, 0, 0},
		{"not a number", "?page=two", 0, 0, 1},
		{"zero page", "?page=0", 0, 0, 1},
		{"negative page size", "?page_size=-3", 0, 0, 1},
		{"both invalid", "?page=x&page_size=y", 0, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/documents"+tt.query, nil)

			page, pageSize, result := ParsePagination(c)

			if page != tt.wantPage || pageSize != tt.wantPageSize {
				t.Errorf("ParsePagination() = (%d, %d), want (%d, %d)", page, pageSize, tt.wantPage, tt.wantPageSize)
			}
			if len(result.Errors) != tt.wantErrors {
				t.Errorf("ParsePagination() errors = %v, want %d", result.Errors, tt.wantErrors)
			}
		})
	}
}
