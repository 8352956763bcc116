package api

import (
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves coach listing, client management and profile routes.
type UserHandler struct {
	errorResponder
	userService service.UserService
}

func NewUserHandler(userService service.UserService, r errorResponder) *UserHandler {
	return &UserHandler{errorResponder: r, userService: userService}
}

type AddClientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

// ListCoaches is public.
// GET /api/users/coaches
func (h *UserHandler) ListCoaches(c *gin.Context) {
	coaches, err := h.userService.ListCoaches(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(coaches, func(s domain.UserSummary) UserSummaryResponse {
		return *mapSummary(&s)
	}))
}

// GET /api/users/clients
func (h *UserHandler) ListClients(c *gin.Context) {
	clients, err := h.userService.ListClients(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(clients, func(cl *domain.Client) UserResponse { return MapUserToResponse(cl) }))
}

// GET /api/users/clients/:id
func (h *UserHandler) GetClient(c *gin.Context) {
	client, err := h.userService.GetClient(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, MapUserToResponse(client))
}

// AddClient creates a client bound to the calling coach.
// POST /api/users/clients
func (h *UserHandler) AddClient(c *gin.Context) {
	var req AddClientRequest
	if !bind(c, h.errorResponder, &req, "Please provide a valid name, email and password") {
		return
	}
	client, err := h.userService.AddClient(c.Request.Context(), identityFrom(c), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, MapUserToResponse(client))
}

// PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bind(c, h.errorResponder, &req, "Invalid profile update") {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), identityFrom(c), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, MapUserToResponse(user))
}
