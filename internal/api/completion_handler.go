package api

import (
	"net/http"

	"alcyxob/fit-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// CompletionHandler serves /api/workout-completions.
type CompletionHandler struct {
	errorResponder
	completionService service.CompletionService
}

func NewCompletionHandler(completionService service.CompletionService, r errorResponder) *CompletionHandler {
	return &CompletionHandler{errorResponder: r, completionService: completionService}
}

// UpsertCompletion records a completion for the caller's plan: 201 when the
// completion is new, 200 when an existing one was merged.
// POST /api/workout-completions
func (h *CompletionHandler) UpsertCompletion(c *gin.Context) {
	var req CompletionRequest
	if !bind(c, h.errorResponder, &req, "Please provide workout_plan_id") {
		return
	}
	completion, created, err := h.completionService.UpsertCompletion(c.Request.Context(), identityFrom(c), req.PlanID, req.toPatch())
	if err != nil {
		h.fail(c, err)
		return
	}
	if created {
		respondCreated(c, mapCompletion(*completion))
		return
	}
	respondMessage(c, http.StatusOK, "Workout completion updated", mapCompletion(*completion))
}

// PUT /api/workout-completions/:id
func (h *CompletionHandler) UpdateCompletion(c *gin.Context) {
	var req CompletionRequest
	if !bind(c, h.errorResponder, &req, "Invalid workout completion update") {
		return
	}
	completion, err := h.completionService.UpdateCompletion(c.Request.Context(), identityFrom(c), c.Param("id"), req.toPatch())
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, mapCompletion(*completion))
}

// DELETE /api/workout-completions/:id
func (h *CompletionHandler) DeleteCompletion(c *gin.Context) {
	if err := h.completionService.DeleteCompletion(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "Workout completion deleted", nil)
}

// ListClientCompletions handles GET /api/workout-completions/client and
// GET /api/workout-completions/client/:clientId
func (h *CompletionHandler) ListClientCompletions(c *gin.Context) {
	completions, err := h.completionService.ListForClient(c.Request.Context(), identityFrom(c), c.Param("clientId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(completions, mapCompletionDetails))
}

// GET /api/workout-completions/plan/:planId
func (h *CompletionHandler) ListPlanCompletions(c *gin.Context) {
	completions, err := h.completionService.ListForPlan(c.Request.Context(), identityFrom(c), c.Param("planId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, mapAll(completions, mapCompletionDetails))
}

// MediaUploadURL issues a presigned PUT URL for proof media.
// POST /api/workout-completions/:id/media/upload-url
func (h *CompletionHandler) MediaUploadURL(c *gin.Context) {
	var req MediaUploadRequest
	if !bind(c, h.errorResponder, &req, "Please provide content_type") {
		return
	}
	upload, err := h.completionService.MediaUploadURL(c.Request.Context(), identityFrom(c), c.Param("id"), req.ContentType)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, MediaUploadResponse{UploadURL: upload.URL, Key: upload.Key, ExpiresAt: upload.ExpiresAt})
}

// ConfirmMedia attaches an uploaded object.
// PUT /api/workout-completions/:id/media
func (h *CompletionHandler) ConfirmMedia(c *gin.Context) {
	var req ConfirmMediaRequest
	if !bind(c, h.errorResponder, &req, "Please provide key") {
		return
	}
	completion, err := h.completionService.ConfirmMedia(c.Request.Context(), identityFrom(c), c.Param("id"), req.Key)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, mapCompletion(*completion))
}

// GET /api/workout-completions/:id/media
func (h *CompletionHandler) MediaURL(c *gin.Context) {
	url, expires, err := h.completionService.MediaURL(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, MediaURLResponse{URL: url, ExpiresAt: expires})
}
