package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/response"
	"barangay-hub/internal/service"
)

type ResidentHandler struct {
	residentService *service.ResidentService
	verifySuccess   string
	verifyFailure   string
}

type registerResidentRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	MiddleName   string `json:"middleName"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Password     string `json:"password" binding:"required"`
	BirthDate    string `json:"birthDate"`
	Gender       string `json:"gender"`
	CivilStatus  string `json:"civilStatus"`
	HouseNumber  string `json:"houseNumber"`
	Street       string `json:"street"`
	Purok        string `json:"purok"`
	BarangayHall string `json:"barangayHall"`
}

type resendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

func NewResidentHandler(residentService *service.ResidentService, verifySuccessURL, verifyFailureURL string) *ResidentHandler {
	return &ResidentHandler{
		residentService: residentService,
		verifySuccess:   verifySuccessURL,
		verifyFailure:   verifyFailureURL,
	}
}

func RegisterResidentRoutes(group gin.IRouter, residentService *service.ResidentService, verifySuccessURL, verifyFailureURL string) {
	if residentService == nil {
		return
	}

	handler := NewResidentHandler(residentService, verifySuccessURL, verifyFailureURL)
	residents := group.Group("/residents")

	residents.POST("", handler.Register)
	residents.GET("/exists", handler.Exists)
	residents.GET("/verify", handler.Verify)
	residents.POST("/resend-verification", handler.ResendVerification)
	residents.POST("/:id/resend-verification", handler.ResendVerificationByID)
}

func (h *ResidentHandler) Register(c *gin.Context) {
	var req registerResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "missing required resident fields")
		return
	}

	resident, err := h.residentService.Register(c.Request.Context(), service.RegisterResidentRequest{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MiddleName:   req.MiddleName,
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		BirthDate:    req.BirthDate,
		Gender:       req.Gender,
		CivilStatus:  req.CivilStatus,
		HouseNumber:  req.HouseNumber,
		Street:       req.Street,
		Purok:        req.Purok,
		BarangayHall: req.BarangayHall,
	})
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Created(c, resident)
}

func (h *ResidentHandler) Exists(c *gin.Context) {
	exists, err := h.residentService.EmailExists(c.Request.Context(), c.Query("email"))
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"exists": exists})
}

// Verify lands directly from the email link, so the outcome is a browser
// redirect rather than a JSON body.
func (h *ResidentHandler) Verify(c *gin.Context) {
	_, err := h.residentService.Verify(c.Request.Context(), c.Query("token"))
	if err != nil {
		if h.verifyFailure != "" {
			c.Redirect(http.StatusSeeOther, h.verifyFailure)
			return
		}
		handleResidentServiceError(c, err)
		return
	}

	if h.verifySuccess != "" {
		c.Redirect(http.StatusSeeOther, h.verifySuccess)
		return
	}
	response.Success(c, gin.H{"verified": true})
}

func (h *ResidentHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "email is required")
		return
	}

	if err := h.residentService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}

func (h *ResidentHandler) ResendVerificationByID(c *gin.Context) {
	resident, err := h.residentService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleResidentServiceError(c, err)
		return
	}

	if err := h.residentService.ResendVerification(c.Request.Context(), resident.Email); err != nil {
		handleResidentServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}

func handleResidentServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResidentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrResidentNotFound, "resident not found")
	case errors.Is(err, service.ErrResidentExists):
		response.Fail(c, http.StatusConflict, response.ErrResidentExists, "email already registered")
	case errors.Is(err, service.ErrResidentAlreadyVerified):
		response.Fail(c, http.StatusConflict, response.ErrVerificationFailed, "resident already verified")
	case errors.Is(err, service.ErrVerificationNotFound), errors.Is(err, service.ErrVerificationExpired):
		response.Fail(c, http.StatusNotFound, response.ErrVerificationFailed, "verification token invalid or expired")
	case errors.Is(err, service.ErrInvalidPhone):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "invalid philippine mobile number")
	case errors.Is(err, service.ErrInvalidResidentReq):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "invalid resident input")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
