package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/response"
	"barangay-hub/internal/service"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

type createFeedbackRequest struct {
	Email    string         `json:"email"`
	Category string         `json:"category"`
	Rating   int            `json:"rating" binding:"required"`
	Message  string         `json:"message" binding:"required"`
	Details  map[string]any `json:"details"`
}

func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func RegisterFeedbackRoutes(group gin.IRouter, feedbackService *service.FeedbackService) {
	if feedbackService == nil {
		return
	}

	handler := NewFeedbackHandler(feedbackService)
	feedbacks := group.Group("/feedbacks")

	feedbacks.POST("", handler.Create)
	feedbacks.GET("/export", handler.Export)
}

func (h *FeedbackHandler) Create(c *gin.Context) {
	var req createFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "rating and message are required")
		return
	}

	feedback, err := h.feedbackService.Create(c.Request.Context(), service.CreateFeedbackRequest{
		Email:    req.Email,
		Category: req.Category,
		Rating:   req.Rating,
		Message:  req.Message,
		Details:  req.Details,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidFeedbackReq) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "invalid feedback input")
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}
	response.Created(c, feedback)
}

func (h *FeedbackHandler) Export(c *gin.Context) {
	filename, body, err := h.feedbackService.ExportCSV(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
