package api

import (
	"time"

	"alcyxob/fit-coach/internal/domain"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validation("date must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

// --- Responses ---

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CoachID   *string     `json:"coach_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(u domain.User) UserResponse {
	b := u.Base()
	return UserResponse{
		ID:        b.ID,
		Name:      b.Name,
		Email:     b.Email,
		Role:      u.Role(),
		CoachID:   domain.CoachIDOf(u),
		CreatedAt: b.CreatedAt,
	}
}

type UserSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func mapSummary(s *domain.UserSummary) *UserSummaryResponse {
	if s == nil {
		return nil
	}
	return &UserSummaryResponse{ID: s.ID, Name: s.Name, Email: s.Email}
}

type ExerciseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func mapExercise(e domain.Exercise) ExerciseResponse {
	return ExerciseResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type PlanExerciseResponse struct {
	ID         string           `json:"id"`
	PlanID     string           `json:"workout_plan_id"`
	ExerciseID string           `json:"exercise_id"`
	Sets       int              `json:"sets"`
	Reps       int              `json:"reps"`
	Weight     *float64         `json:"weight"`
	Exercise   ExerciseResponse `json:"exercise"`
}

func mapPlanExercise(d domain.PlanExerciseDetail) PlanExerciseResponse {
	return PlanExerciseResponse{
		ID:         d.ID,
		PlanID:     d.PlanID,
		ExerciseID: d.ExerciseID,
		Sets:       d.Sets,
		Reps:       d.Reps,
		Weight:     d.Weight,
		Exercise:   mapExercise(d.Exercise),
	}
}

type PlanResponse struct {
	ID          string                 `json:"id"`
	CoachID     string                 `json:"coach_id"`
	ClientID    string                 `json:"client_id"`
	Date        string                 `json:"date"`
	Topic       string                 `json:"topic"`
	Description *string                `json:"description"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Coach       *UserSummaryResponse   `json:"coach,omitempty"`
	Client      *UserSummaryResponse   `json:"client,omitempty"`
	Exercises   []PlanExerciseResponse `json:"exercises,omitempty"`
}

func mapPlan(p domain.WorkoutPlan) PlanResponse {
	return PlanResponse{
		ID:          p.ID,
		CoachID:     p.CoachID,
		ClientID:    p.ClientID,
		Date:        p.Date.Format(dateLayout),
		Topic:       p.Topic,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func mapPlanDetails(d domain.PlanDetails) PlanResponse {
	resp := mapPlan(d.WorkoutPlan)
	resp.Coach = mapSummary(d.Coach)
	resp.Client = mapSummary(d.Client)
	resp.Exercises = make([]PlanExerciseResponse, 0, len(d.Exercises))
	for _, e := range d.Exercises {
		resp.Exercises = append(resp.Exercises, mapPlanExercise(e))
	}
	return resp
}

type PlanSummaryResponse struct {
	ID          string               `json:"id"`
	Date        string               `json:"date"`
	Topic       string               `json:"topic"`
	Description *string              `json:"description"`
	Coach       *UserSummaryResponse `json:"coach,omitempty"`
}

type CompletionResponse struct {
	ID               string               `json:"id"`
	PlanID           string               `json:"workout_plan_id"`
	ClientID         string               `json:"client_id"`
	Completed        bool                 `json:"completed"`
	CompletionDate   time.Time            `json:"completion_date"`
	Feedback         *string              `json:"feedback"`
	DifficultyRating *int                 `json:"difficulty_rating"`
	HasMedia         bool                 `json:"has_media"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Plan             *PlanSummaryResponse `json:"workout_plan,omitempty"`
	Client           *UserSummaryResponse `json:"client,omitempty"`
}

func mapCompletion(c domain.WorkoutCompletion) CompletionResponse {
	return CompletionResponse{
		ID:               c.ID,
		PlanID:           c.PlanID,
		ClientID:         c.ClientID,
		Completed:        c.Completed,
		CompletionDate:   c.CompletionDate,
		Feedback:         c.Feedback,
		DifficultyRating: c.DifficultyRating,
		HasMedia:         c.MediaKey != nil,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func mapCompletionDetails(d domain.CompletionDetails) CompletionResponse {
	resp := mapCompletion(d.WorkoutCompletion)
	resp.Client = mapSummary(d.Client)
	if p := d.Plan; p != nil {
		resp.Plan = &PlanSummaryResponse{
			ID:          p.ID,
			Date:        p.Date.Format(dateLayout),
			Topic:       p.Topic,
			Description: p.Description,
			Coach:       mapSummary(p.Coach),
		}
	}
	return resp
}

func mapAll[T, R any](items []T, f func(T) R) []R {
	out := make([]R, 0, len(items))
	for _, it := range items {
		out = append(out, f(it))
	}
	return out
}

// --- Requests ---

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name domain.Optional[string] `json:"name"`
}

type CreateExerciseRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type CreatePlanRequest struct {
	ClientID    string  `json:"client_id"`
	Date        string  `json:"date"`
	Topic       *string `json:"topic"`
	Description *string `json:"description"`
}

type UpdatePlanRequest struct {
	ClientID    domain.Optional[string] `json:"client_id"`
	Date        domain.Optional[string] `json:"date"`
	Topic       domain.Optional[string] `json:"topic"`
	Description domain.Optional[string] `json:"description"`
}

// toPatch parses the date, if any, and converts to the domain patch.
func (r UpdatePlanRequest) toPatch() (domain.PlanPatch, error) {
	patch := domain.PlanPatch{
		ClientID:    r.ClientID,
		Topic:       r.Topic,
		Description: r.Description,
	}
	switch {
	case r.Date.Present():
		d, err := parseDate(r.Date.Value)
		if err != nil {
			return domain.PlanPatch{}, err
		}
		patch.Date = domain.Some(d)
	case r.Date.Set:
		patch.Date = domain.Null[time.Time]()
	}
	return patch, nil
}

type AttachExerciseRequest struct {
	ExerciseID string   `json:"exercise_id"`
	Sets       int      `json:"sets"`
	Reps       int      `json:"reps"`
	Weight     *float64 `json:"weight"`
}

type CompletionRequest struct {
	PlanID           string                  `json:"workout_plan_id"`
	Completed        domain.Optional[bool]   `json:"completed"`
	Feedback         domain.Optional[string] `json:"feedback"`
	DifficultyRating domain.Optional[int]    `json:"difficulty_rating"`
}

func (r CompletionRequest) toPatch() domain.CompletionPatch {
	return domain.CompletionPatch{
		Completed:        r.Completed,
		Feedback:         r.Feedback,
		DifficultyRating: r.DifficultyRating,
	}
}

type MediaUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

type MediaUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConfirmMediaRequest struct {
	Key string `json:"key" binding:"required"`
}

type MediaURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
