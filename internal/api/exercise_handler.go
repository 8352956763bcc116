package api

import (
	"alcyxob/fit-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler handles HTTP requests for the exercise catalog.
type ExerciseHandler struct {
	errorResponder
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService, r errorResponder) *ExerciseHandler {
	return &ExerciseHandler{errorResponder: r, exerciseService: exerciseService}
}

// CreateExercise handles POST /api/exercises
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req CreateExerciseRequest
	if !bind(c, h.errorResponder, &req, "Please provide an exercise name") {
		return
	}
	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), identityFrom(c), req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, mapExercise(*exercise))
}

// ListExercises handles GET /api/exercises
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.ListExercises(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(exercises, mapExercise))
}

// GetExercise handles GET /api/exercises/:id
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, mapExercise(*exercise))
}
