package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"barangay-hub/internal/api/middleware"
	"barangay-hub/internal/api/response"
	"barangay-hub/internal/service"
)

// CookieSettings controls how the session cookie is issued. Secure and the
// domain differ between local development and deployment.
type CookieSettings struct {
	Domain string
	Secure bool
}

type AuthHandler struct {
	authService *service.AuthService
	cookie      CookieSettings
}

type registerUserRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Type      string `json:"type"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	FirstName        *string `json:"firstName"`
	LastName         *string `json:"lastName"`
	MiddleName       *string `json:"middleName"`
	Phone            *string `json:"phone"`
	Occupation       *string `json:"occupation"`
	Address          *string `json:"address"`
	CivilStatus      *string `json:"civilStatus"`
	BirthDate        *string `json:"dateOfBirth"`
	Gender           *string `json:"gender"`
	HouseNumber      *string `json:"houseNumber"`
	Street           *string `json:"street"`
	Purok            *string `json:"purok"`
	Hall             *string `json:"hall"`
	EmergencyContact *string `json:"emergencyContact"`
	EmergencyPhone   *string `json:"emergencyPhone"`
	Avatar           *string `json:"avatar"`
}

func NewAuthHandler(authService *service.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

func RegisterAuthRoutes(group gin.IRouter, authService *service.AuthService, jwtSecret string, cookie CookieSettings) {
	if authService == nil {
		return
	}

	handler := NewAuthHandler(authService, cookie)

	auth := group.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout)
	auth.GET("/me", middleware.JWTAuth(jwtSecret), handler.Me)

	users := group.Group("/users", middleware.JWTAuth(jwtSecret))
	users.GET("/me", handler.Me)
	users.PATCH("/me", handler.UpdateProfile)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "email and password are required")
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), service.RegisterUserRequest{
		Email:     req.Email,
		Password:  req.Password,
		Type:      req.Type,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	response.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "email and password are required")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	response.Success(c, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	response.Success(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "unauthorized")
		return
	}

	user, err := h.authService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "invalid profile payload")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), claims.UserID, service.UpdateProfileRequest{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		MiddleName:       req.MiddleName,
		Phone:            req.Phone,
		Occupation:       req.Occupation,
		Address:          req.Address,
		CivilStatus:      req.CivilStatus,
		BirthDate:        req.BirthDate,
		Gender:           req.Gender,
		HouseNumber:      req.HouseNumber,
		Street:           req.Street,
		Purok:            req.Purok,
		Hall:             req.Hall,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		Avatar:           req.Avatar,
	})
	if err != nil {
		handleAuthServiceError(c, err)
		return
	}
	response.Success(c, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := int(h.authService.SessionTTL().Seconds())
	c.SetSameSite(h.sameSite())
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) sameSite() http.SameSite {
	if h.cookie.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func handleAuthServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrPasswordWrong, "invalid email or password")
	case errors.Is(err, service.ErrUserExists):
		response.Fail(c, http.StatusConflict, response.ErrUserExists, "user already exists")
	case errors.Is(err, service.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrUserNotFound, "user not found")
	case errors.Is(err, service.ErrInvalidUserReq):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation, "invalid user input")
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "internal error")
	}
}
