package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/response"
	"barangay-hub/internal/repository"
	"barangay-hub/internal/service"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

type createSubmissionRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	SubmissionType   string `json:"submissionType" binding:"required"`
	Type             string `json:"type"`
	Priority         string `json:"priority"`
	Subject          string `json:"subject"`
	Message          string `json:"message" binding:"required"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	Location         string `json:"location"`
	Hall             string `json:"hall"`
	Anonymous        bool   `json:"anonymous"`
	Urgent           bool   `json:"urgent"`
	SMSNotifications bool   `json:"smsNotifications"`
	EvidenceURL      string `json:"evidenceUrl"`
}

func NewSubmissionHandler(submissionService *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

func RegisterSubmissionRoutes(group gin.IRouter, submissionService *service.SubmissionService) {
	if submissionService == nil {
		return
	}

	handler := NewSubmissionHandler(submissionService)
	submissions := group.Group("/submissions")

	submissions.POST("", handler.Create)
	submissions.GET("", handler.List)
	submissions.GET("/:id", handler.GetByID)
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	var req createSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrSubmissionInvalid, "submissionType and message are required")
		return
	}

	submission, err := h.submissionService.Create(c.Request.Context(), service.CreateSubmissionRequest{
		Name:             req.Name,
		Email:            req.Email,
		SubmissionType:   req.SubmissionType,
		Type:             req.Type,
		Priority:         req.Priority,
		Subject:          req.Subject,
		Message:          req.Message,
		Phone:            req.Phone,
		Address:          req.Address,
		Location:         req.Location,
		Hall:             req.Hall,
		Anonymous:        req.Anonymous,
		Urgent:           req.Urgent,
		SMSNotifications: req.SMSNotifications,
		EvidenceURL:      req.EvidenceURL,
	})
	if err != nil {
		handleSubmissionServiceError(c, err)
		return
	}
	response.Created(c, submission)
}

func (h *SubmissionHandler) List(c *gin.Context) {
	page := parseIntOrDefault(c.Query("page"), 1)
	pageSize := parseIntOrDefault(c.Query("page_size"), 20)

	filter := repository.SubmissionListFilter{
		Pagination: repository.Pagination{
			Limit:  int32(pageSize),
			Offset: int32((page - 1) * pageSize),
		},
	}
	if email := strings.TrimSpace(c.Query("email")); email != "" {
		lowered := strings.ToLower(email)
		filter.Email = &lowered
	}
	if submissionType := strings.TrimSpace(c.Query("submissionType")); submissionType != "" {
		filter.SubmissionType = &submissionType
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter.Status = &status
	}

	items, total, err := h.submissionService.List(c.Request.Context(), filter)
	if err != nil {
		handleSubmissionServiceError(c, err)
		return
	}
	response.Paginated(c, items, page, pageSize, total)
}

func (h *SubmissionHandler) GetByID(c *gin.Context) {
	submission, err := h.submissionService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleSubmissionServiceError(c, err)
		return
	}
	response.Success(c, submission)
}

func handleSubmissionServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSubmissionNotFound, "submission not found")
	case errors.Is(err, service.ErrInvalidSubmissionReq):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrSubmissionInvalid, "invalid submission input")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
