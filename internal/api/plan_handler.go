package api

import (
	"net/http"
	"time"

	"alcyxob/fit-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves /api/workout-plans.
type PlanHandler struct {
	errorResponder
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService, r errorResponder) *PlanHandler {
	return &PlanHandler{errorResponder: r, planService: planService}
}

// CreatePlan handles POST /api/workout-plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if !bind(c, h.errorResponder, &req, "Please provide client_id and date") {
		return
	}
	var date time.Time
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			h.fail(c, err)
			return
		}
		date = d
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), identityFrom(c), service.CreatePlanInput{
		ClientID:    req.ClientID,
		Date:        date,
		Topic:       req.Topic,
		Description: req.Description,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, mapPlan(*plan))
}

// ListCoachPlans handles GET /api/workout-plans
func (h *PlanHandler) ListCoachPlans(c *gin.Context) {
	plans, err := h.planService.ListForCoach(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(plans, mapPlanDetails))
}

// ListClientPlans handles GET /api/workout-plans/client and
// GET /api/workout-plans/client/:clientId
func (h *PlanHandler) ListClientPlans(c *gin.Context) {
	plans, err := h.planService.ListForClient(c.Request.Context(), identityFrom(c), c.Param("clientId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(plans, mapPlanDetails))
}

// GetPlan handles GET /api/workout-plans/:id
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, mapPlanDetails(*plan))
}

// UpdatePlan handles PUT /api/workout-plans/:id
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var req UpdatePlanRequest
	if !bind(c, h.errorResponder, &req, "Invalid workout plan update") {
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		h.fail(c, err)
		return
	}
	plan, err := h.planService.UpdatePlan(c.Request.Context(), identityFrom(c), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, mapPlan(*plan))
}

// DeletePlan handles DELETE /api/workout-plans/:id
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	if err := h.planService.DeletePlan(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Workout plan deleted", nil)
}

// AttachExercise handles POST /api/workout-plans/:id/exercises
func (h *PlanHandler) AttachExercise(c *gin.Context) {
	var req AttachExerciseRequest
	if !bind(c, h.errorResponder, &req, "Please provide exercise_id, sets and reps") {
		return
	}
	row, err := h.planService.AttachExercise(c.Request.Context(), identityFrom(c), c.Param("id"), service.AttachExerciseInput{
		ExerciseID: req.ExerciseID,
		Sets:       req.Sets,
		Reps:       req.Reps,
		Weight:     req.Weight,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respondCreated(c, mapPlanExercise(*row))
}
