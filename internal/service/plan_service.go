package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"
	"alcyxob/fit-coach/internal/storage"

	"go.uber.org/zap"
)

// ErrPlanHasCompletions is returned when a plan with recorded completions is
// moved to another client.
var ErrPlanHasCompletions = domain.Conflict("Workout plan already has completions and cannot be reassigned")

// CreatePlanInput carries the fields of a new plan.
type CreatePlanInput struct {
	ClientID    string
	Date        time.Time
	Topic       *string // nil or blank selects domain.DefaultPlanTopic
	Description *string
}

// AttachExerciseInput carries one exercise prescription for a plan.
type AttachExerciseInput struct {
	ExerciseID string
	Sets       int
	Reps       int
	Weight     *float64
}

// PlanService manages workout plans and their exercise rows.
type PlanService interface {
	CreatePlan(ctx context.Context, id access.Identity, in CreatePlanInput) (*domain.WorkoutPlan, error)
	AttachExercise(ctx context.Context, id access.Identity, planID string, in AttachExerciseInput) (*domain.PlanExerciseDetail, error)
	GetPlan(ctx context.Context, id access.Identity, planID string) (*domain.PlanDetails, error)
	UpdatePlan(ctx context.Context, id access.Identity, planID string, patch domain.PlanPatch) (*domain.WorkoutPlan, error)
	DeletePlan(ctx context.Context, id access.Identity, planID string) error
	ListForCoach(ctx context.Context, id access.Identity) ([]domain.PlanDetails, error)
	// ListForClient lists the plans of clientID; a client always gets its own.
	ListForClient(ctx context.Context, id access.Identity, clientID string) ([]domain.PlanDetails, error)
}

type planService struct {
	userRepo       repository.UserRepository
	exerciseRepo   repository.ExerciseRepository
	planRepo       repository.WorkoutPlanRepository
	completionRepo repository.CompletionRepository
	files          storage.FileStorage // nil when media storage is disabled
	log            *zap.Logger
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	userRepo repository.UserRepository,
	exerciseRepo repository.ExerciseRepository,
	planRepo repository.WorkoutPlanRepository,
	completionRepo repository.CompletionRepository,
	files storage.FileStorage,
	log *zap.Logger,
) PlanService {
	return &planService{
		userRepo:       userRepo,
		exerciseRepo:   exerciseRepo,
		planRepo:       planRepo,
		completionRepo: completionRepo,
		files:          files,
		log:            log,
	}
}

// calendarDay drops the time of day, keeping the date as given.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// loadPlan returns the plan, or nil when it does not exist.
func loadPlan(ctx context.Context, plans repository.WorkoutPlanRepository, planID string) (*domain.WorkoutPlan, error) {
	if planID == "" {
		return nil, nil
	}
	p, err := plans.GetByID(ctx, planID)
	if err := lookupErr(err); err != nil {
		return nil, err
	}
	return p, nil
}

// authorizedPlan loads planID and asks the mediator whether id may perform action on it.
func (s *planService) authorizedPlan(ctx context.Context, id access.Identity, action access.Action, planID string) (*domain.WorkoutPlan, error) {
	if err := access.CheckRole(id, action).Err(); err != nil {
		return nil, err
	}
	p, err := loadPlan(ctx, s.planRepo, planID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(id, action, access.PlanResource(p)).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *planService) CreatePlan(ctx context.Context, id access.Identity, in CreatePlanInput) (*domain.WorkoutPlan, error) {
	if err := access.CheckRole(id, access.CreatePlan).Err(); err != nil {
		return nil, err
	}
	if in.ClientID == "" || in.Date.IsZero() {
		return nil, domain.Validation("Please provide client_id and date")
	}

	client, err := resolveClient(ctx, s.userRepo, in.ClientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(id, access.CreatePlan, access.ClientResource(client)).Err(); err != nil {
		return nil, err
	}

	plan := &domain.WorkoutPlan{
		CoachID:     id.UserID,
		ClientID:    client.ID,
		Date:        calendarDay(in.Date),
		Topic:       domain.DefaultPlanTopic,
		Description: in.Description,
	}
	if in.Topic != nil && strings.TrimSpace(*in.Topic) != "" {
		plan.Topic = *in.Topic
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, storeErr(err, "")
	}
	return plan, nil
}

func (s *planService) AttachExercise(ctx context.Context, id access.Identity, planID string, in AttachExerciseInput) (*domain.PlanExerciseDetail, error) {
	if err := access.CheckRole(id, access.AttachExercise).Err(); err != nil {
		return nil, err
	}
	switch {
	case in.ExerciseID == "":
		return nil, domain.Validation("Please provide exercise_id, sets and reps")
	case in.Sets <= 0 || in.Reps <= 0:
		return nil, domain.Validation("sets and reps must be positive integers")
	case in.Weight != nil && *in.Weight < 0:
		return nil, domain.Validation("weight cannot be negative")
	}

	plan, err := s.authorizedPlan(ctx, id, access.AttachExercise, planID)
	if err != nil {
		return nil, err
	}
	exercise, err := s.exerciseRepo.GetByID(ctx, in.ExerciseID)
	if err != nil {
		return nil, storeErr(err, msgExerciseNotFound)
	}

	row := domain.PlanExercise{
		PlanID:     plan.ID,
		ExerciseID: exercise.ID,
		Sets:       in.Sets,
		Reps:       in.Reps,
		Weight:     in.Weight,
	}
	if _, err := s.planRepo.AddExercise(ctx, &row); err != nil {
		return nil, storeErr(err, access.Message(access.AttachExercise))
	}
	return &domain.PlanExerciseDetail{PlanExercise: row, Exercise: *exercise}, nil
}

func (s *planService) GetPlan(ctx context.Context, id access.Identity, planID string) (*domain.PlanDetails, error) {
	plan, err := s.authorizedPlan(ctx, id, access.ReadPlan, planID)
	if err != nil {
		return nil, err
	}
	details, err := s.withDetails(ctx, []domain.WorkoutPlan{*plan})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// UpdatePlan applies a partial update. A supplied client must again be one of
// the coach's clients.
func (s *planService) UpdatePlan(ctx context.Context, id access.Identity, planID string, patch domain.PlanPatch) (*domain.WorkoutPlan, error) {
	if err := access.CheckRole(id, access.UpdatePlan).Err(); err != nil {
		return nil, err
	}
	if patch.ClientID.Set && (patch.ClientID.Null || patch.ClientID.Value == "") {
		return nil, domain.Validation("client_id cannot be empty")
	}
	if patch.Date.Set && (patch.Date.Null || patch.Date.Value.IsZero()) {
		return nil, domain.Validation("date cannot be empty")
	}

	plan, err := s.authorizedPlan(ctx, id, access.UpdatePlan, planID)
	if err != nil {
		return nil, err
	}

	if patch.ClientID.Present() {
		client, err := resolveClient(ctx, s.userRepo, patch.ClientID.Value)
		if err != nil {
			return nil, err
		}
		if err := access.Authorize(id, access.ReassignPlan, access.ClientResource(client)).Err(); err != nil {
			return nil, err
		}
		if client.ID != plan.ClientID {
			if err := s.checkNoCompletions(ctx, plan.ID); err != nil {
				return nil, err
			}
		}
	}
	if patch.Date.Present() {
		patch.Date.Value = calendarDay(patch.Date.Value)
	}

	patch.Apply(plan)
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, storeErr(err, access.Message(access.UpdatePlan))
	}
	return plan, nil
}

// checkNoCompletions fails when any completion has been recorded for the plan.
func (s *planService) checkNoCompletions(ctx context.Context, planID string) error {
	completions, err := s.completionRepo.ListByPlan(ctx, planID)
	if err != nil {
		return storeErr(err, "")
	}
	if len(completions) > 0 {
		return ErrPlanHasCompletions
	}
	return nil
}

// DeletePlan removes the plan with its exercise rows and completions in one
// transaction, then drops attached completion media.
func (s *planService) DeletePlan(ctx context.Context, id access.Identity, planID string) error {
	plan, err := s.authorizedPlan(ctx, id, access.DeletePlan, planID)
	if err != nil {
		return err
	}
	mediaKeys, err := s.planRepo.DeleteCascade(ctx, plan.ID)
	if err != nil {
		return storeErr(err, access.Message(access.DeletePlan))
	}
	s.log.Info("workout plan deleted",
		zap.String("plan_id", plan.ID), zap.String("coach_id", id.UserID), zap.Int("media_objects", len(mediaKeys)))
	removeMedia(ctx, s.files, s.log, mediaKeys...)
	return nil
}

func (s *planService) ListForCoach(ctx context.Context, id access.Identity) ([]domain.PlanDetails, error) {
	if err := access.Authorize(id, access.ListOwnPlans, access.None).Err(); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListByCoach(ctx, id.UserID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return s.withDetails(ctx, plans)
}

func (s *planService) ListForClient(ctx context.Context, id access.Identity, clientID string) ([]domain.PlanDetails, error) {
	if err := access.CheckRole(id, access.ListClientPlan).Err(); err != nil {
		return nil, err
	}
	res, clientID, err := clientScope(ctx, s.userRepo, id, clientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(id, access.ListClientPlan, res).Err(); err != nil {
		return nil, err
	}
	plans, err := s.planRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return s.withDetails(ctx, plans)
}

// clientScope resolves whose records a listing covers: a client always sees
// its own, a coach names the client.
func clientScope(ctx context.Context, users repository.UserRepository, id access.Identity, clientID string) (access.Resource, string, error) {
	if id.IsClient() {
		return access.Resource{ClientID: id.UserID}, id.UserID, nil
	}
	ok, err := isClientOf(ctx, users, id.UserID, clientID)
	if err != nil {
		return access.Missing, "", err
	}
	if !ok {
		return access.Missing, clientID, nil
	}
	return access.Resource{CoachID: id.UserID, ClientID: clientID}, clientID, nil
}

// withDetails attaches participant summaries and exercise rows to plans using
// one batched lookup per kind.
func (s *planService) withDetails(ctx context.Context, plans []domain.WorkoutPlan) ([]domain.PlanDetails, error) {
	out := make([]domain.PlanDetails, 0, len(plans))
	if len(plans) == 0 {
		return out, nil
	}

	planIDs := make([]string, 0, len(plans))
	userIDs := make([]string, 0, 2*len(plans))
	for _, p := range plans {
		planIDs = append(planIDs, p.ID)
		userIDs = append(userIDs, p.CoachID, p.ClientID)
	}
	users, err := s.userRepo.GetByIDs(ctx, dedupe(userIDs))
	if err != nil {
		return nil, storeErr(err, "")
	}
	rows, err := s.planRepo.ListExercises(ctx, planIDs)
	if err != nil {
		return nil, storeErr(err, "")
	}
	byPlan := make(map[string][]domain.PlanExerciseDetail, len(plans))
	for _, r := range rows {
		byPlan[r.PlanID] = append(byPlan[r.PlanID], r)
	}

	for _, p := range plans {
		exercises := byPlan[p.ID]
		if exercises == nil {
			exercises = []domain.PlanExerciseDetail{}
		}
		out = append(out, domain.PlanDetails{
			WorkoutPlan: p,
			Coach:       domain.SummaryOf(users[p.CoachID]),
			Client:      domain.SummaryOf(users[p.ClientID]),
			Exercises:   exercises,
		})
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// removeMedia deletes objects best-effort; the rows referencing them are
// already gone, so failures are only logged.
func removeMedia(ctx context.Context, files storage.FileStorage, log *zap.Logger, keys ...string) {
	if files == nil {
		return
	}
	for _, key := range keys {
		if err := files.DeleteObject(ctx, key); err != nil {
			log.Warn("failed to delete completion media", zap.String("key", key), zap.Error(err))
		}
	}
}
