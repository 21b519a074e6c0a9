package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-tfidf-search/services"
)

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// SearchHandler ranks every indexed document against the query.
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if result := ValidateSearchRequest(&req); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	results, err := api.engine.Search(services.SearchQuery{
		QueryString: req.Query,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		SendAppError(c, ErrorCodeSearchFailed, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
