package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/response"
	"barangay-hub/internal/service"
)

type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

type createAnnouncementRequest struct {
	Title             string     `json:"title" binding:"required"`
	Content           string     `json:"content" binding:"required"`
	Category          string     `json:"category"`
	Priority          string     `json:"priority"`
	Hall              string     `json:"hall"`
	EventDate         *time.Time `json:"eventDate"`
	EventTime         string     `json:"eventTime"`
	ExpectedAttendees string     `json:"expectedAttendees"`
	Tags              []string   `json:"tags"`
	Published         *bool      `json:"published"`
	PublishedSchedule *time.Time `json:"publishedSchedule"`
	CreatedByName     string     `json:"createdByName"`
	CreatedByEmail    string     `json:"createdByEmail"`
}

// optionalTime distinguishes an explicit JSON null from an absent field.
// Clearing a schedule and leaving it alone are different patches.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

type updateAnnouncementRequest struct {
	Title             *string      `json:"title"`
	Content           *string      `json:"content"`
	Category          *string      `json:"category"`
	Priority          *string      `json:"priority"`
	Hall              *string      `json:"hall"`
	EventDate         *time.Time   `json:"eventDate"`
	EventTime         *string      `json:"eventTime"`
	ExpectedAttendees *string      `json:"expectedAttendees"`
	Tags              []string     `json:"tags"`
	Published         *bool        `json:"published"`
	PublishedSchedule optionalTime `json:"publishedSchedule"`
}

func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
	}
}

func RegisterAnnouncementRoutes(group gin.IRouter, announcementService *service.AnnouncementService) {
	if announcementService == nil {
		return
	}

	handler := NewAnnouncementHandler(announcementService)
	ann := group.Group("/announcements")

	ann.POST("", handler.Create)
	ann.GET("/drafts", handler.ListDrafts)
	ann.GET("/scheduled", handler.ListScheduled)
	ann.GET("/published", handler.ListPublished)
	ann.GET("/:id", handler.GetByID)
	ann.PATCH("/:id", handler.Update)
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req createAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrAnnouncementInvalid, "title and content are required")
		return
	}

	item, err := h.announcementService.Create(c.Request.Context(), service.CreateAnnouncementRequest{
		Title:             req.Title,
		Content:           req.Content,
		Category:          req.Category,
		Priority:          req.Priority,
		Hall:              req.Hall,
		EventDate:         req.EventDate,
		EventTime:         req.EventTime,
		ExpectedAttendees: req.ExpectedAttendees,
		Tags:              req.Tags,
		Published:         req.Published,
		PublishedSchedule: req.PublishedSchedule,
		CreatedByName:     req.CreatedByName,
		CreatedByEmail:    req.CreatedByEmail,
	})
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.Created(c, item)
}

func (h *AnnouncementHandler) GetByID(c *gin.Context) {
	item, err := h.announcementService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	var req updateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrAnnouncementInvalid, "invalid announcement payload")
		return
	}

	item, err := h.announcementService.Update(c.Request.Context(), c.Param("id"), service.UpdateAnnouncementRequest{
		Title:                req.Title,
		Content:              req.Content,
		Category:             req.Category,
		Priority:             req.Priority,
		Hall:                 req.Hall,
		EventDate:            req.EventDate,
		EventTime:            req.EventTime,
		ExpectedAttendees:    req.ExpectedAttendees,
		Tags:                 req.Tags,
		Published:            req.Published,
		PublishedSchedule:    req.PublishedSchedule.Value,
		PublishedScheduleSet: req.PublishedSchedule.Set,
	})
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *AnnouncementHandler) ListDrafts(c *gin.Context) {
	items, err := h.announcementService.ListDrafts(c.Request.Context())
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *AnnouncementHandler) ListScheduled(c *gin.Context) {
	items, err := h.announcementService.ListScheduled(c.Request.Context())
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.Success(c, items)
}

func (h *AnnouncementHandler) ListPublished(c *gin.Context) {
	items, err := h.announcementService.ListPublished(c.Request.Context())
	if err != nil {
		handleAnnouncementServiceError(c, err)
		return
	}
	response.Success(c, items)
}

func handleAnnouncementServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnnouncementNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrAnnouncementNotFound, "announcement not found")
	case errors.Is(err, service.ErrInvalidAnnouncementReq):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrAnnouncementInvalid, "invalid announcement input")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
