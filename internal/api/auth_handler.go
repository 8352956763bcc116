package api

import (
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	errorResponder
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, r errorResponder) *AuthHandler {
	return &AuthHandler{errorResponder: r, authService: authService}
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// bind decodes the JSON body; any decoding or binding failure is reported as
// a validation error with msg.
func bind(c *gin.Context, r errorResponder, req interface{}, msg string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		r.fail(c, &domain.Error{Kind: domain.KindValidation, Message: msg, Err: err})
		return false
	}
	return true
}

// Register creates a coach account.
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, h.errorResponder, &req, "Please provide a valid name, email and password") {
		return
	}

	coach, err := h.authService.RegisterCoach(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, MapUserToResponse(coach))
}

// Login authenticates a user and returns a token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, h.errorResponder, &req, "Please provide email and password") {
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, LoginResponse{Token: token, User: MapUserToResponse(user)})
}
