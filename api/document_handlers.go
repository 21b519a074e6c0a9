package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDocumentsHandler lists indexed document ids with pagination.
func (api *API) GetDocumentsHandler(c *gin.Context) {
	page, pageSize, result := ParsePagination(c)
	if result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	c.JSON(http.StatusOK, api.engine.ListDocuments(page, pageSize))
}

// GetDocumentHandler returns the term statistics of one document.
func (api *API) GetDocumentHandler(c *gin.Context) {
	documentID := c.Query("id")
	if result := ValidateDocumentID(documentID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	info, err := api.engine.Document(documentID)
	if err != nil {
		SendAppError(c, ErrorCodeInternalError, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// DeleteDocumentHandler removes one document from the index and persists the snapshot.
func (api *API) DeleteDocumentHandler(c *gin.Context) {
	documentID := c.Query("id")
	if result := ValidateDocumentID(documentID); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	if err := api.engine.RemoveDocument(documentID); err != nil {
		SendAppError(c, ErrorCodePersistenceFailed, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "deleted",
		"document_id": documentID,
	})
}
