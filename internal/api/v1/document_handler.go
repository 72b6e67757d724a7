package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/response"
	"barangay-hub/internal/service"
)

type DocumentHandler struct {
	documentService *service.DocumentService
}

func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func RegisterDocumentRoutes(group gin.IRouter, documentService *service.DocumentService) {
	if documentService == nil {
		return
	}

	handler := NewDocumentHandler(documentService)
	budget := group.Group("/budget-transparency")

	budget.POST("/upload", handler.Upload)
	budget.HEAD("/download", handler.Head)
	budget.GET("/download", handler.Download)
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.documentService.MaxUploadSize()+1)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrDocumentInvalid, "file field is required")
		return
	}
	defer file.Close()

	if err := h.documentService.Store(file); err != nil {
		handleDocumentServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true, "message": "Budget Transparency Document uploaded successfully."})
}

func (h *DocumentHandler) Head(c *gin.Context) {
	size, modTime, err := h.documentService.Stat()
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.writeDocumentHeaders(c, size, modTime)
	c.Status(http.StatusOK)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	size, modTime, err := h.documentService.Stat()
	if err != nil {
		handleDocumentServiceError(c, err)
		return
	}

	file, err := h.documentService.Open()
	if err != nil {
		handleDocumentServiceError(c, err)
		return
	}
	defer file.Close()

	disposition := "inline"
	if dl := c.Query("dl"); dl == "1" || dl == "true" {
		disposition = "attachment"
	}

	h.writeDocumentHeaders(c, size, modTime)
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, h.documentService.FileName()))
	http.ServeContent(c.Writer, c.Request, h.documentService.FileName(), modTime, file)
}

func (h *DocumentHandler) writeDocumentHeaders(c *gin.Context, size int64, modTime time.Time) {
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Length", strconv.FormatInt(size, 10))
	c.Header("Last-Modified", modTime.UTC().Format(http.TimeFormat))
	c.Header("Accept-Ranges", "bytes")
	c.Header("Cache-Control", "public, max-age=3600, immutable")
}

func handleDocumentServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrDocumentNotFound, "Budget Transparency Document not found.")
	case errors.Is(err, service.ErrDocumentTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrDocumentInvalid, "file exceeds the 20 MiB limit")
	case errors.Is(err, service.ErrDocumentNotPDF):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrDocumentInvalid, "only PDF files are allowed")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
