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

var (
	ErrMediaDisabled    = domain.Unavailable("Media storage is not configured", nil)
	ErrNoMedia          = domain.NotFound("No media attached to this workout completion")
	ErrInvalidMediaKey  = domain.Validation("Invalid media key")
	ErrInvalidMediaType = domain.Validation("content_type must be an image or video type")
)

// MediaUpload is a presigned upload target for completion proof media.
type MediaUpload struct {
	URL       string
	Key       string
	ExpiresAt time.Time
}

// CompletionService records clients' reports against their plans.
type CompletionService interface {
	// UpsertCompletion creates the completion for (plan, caller) or merges the
	// supplied fields into the existing one. created reports an insert.
	UpsertCompletion(ctx context.Context, id access.Identity, planID string, patch domain.CompletionPatch) (c *domain.WorkoutCompletion, created bool, err error)
	UpdateCompletion(ctx context.Context, id access.Identity, completionID string, patch domain.CompletionPatch) (*domain.WorkoutCompletion, error)
	DeleteCompletion(ctx context.Context, id access.Identity, completionID string) error
	ListForClient(ctx context.Context, id access.Identity, clientID string) ([]domain.CompletionDetails, error)
	ListForPlan(ctx context.Context, id access.Identity, planID string) ([]domain.CompletionDetails, error)

	MediaUploadURL(ctx context.Context, id access.Identity, completionID, contentType string) (*MediaUpload, error)
	ConfirmMedia(ctx context.Context, id access.Identity, completionID, key string) (*domain.WorkoutCompletion, error)
	MediaURL(ctx context.Context, id access.Identity, completionID string) (string, time.Time, error)
}

type completionService struct {
	userRepo       repository.UserRepository
	planRepo       repository.WorkoutPlanRepository
	completionRepo repository.CompletionRepository
	files          storage.FileStorage // nil when media storage is disabled
	log            *zap.Logger
	now            func() time.Time
}

// NewCompletionService creates a new instance of completionService.
func NewCompletionService(
	userRepo repository.UserRepository,
	planRepo repository.WorkoutPlanRepository,
	completionRepo repository.CompletionRepository,
	files storage.FileStorage,
	log *zap.Logger,
) CompletionService {
	return &completionService{
		userRepo:       userRepo,
		planRepo:       planRepo,
		completionRepo: completionRepo,
		files:          files,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *completionService) UpsertCompletion(ctx context.Context, id access.Identity, planID string, patch domain.CompletionPatch) (*domain.WorkoutCompletion, bool, error) {
	if err := access.CheckRole(id, access.UpsertCompletion).Err(); err != nil {
		return nil, false, err
	}
	if planID == "" {
		return nil, false, domain.Validation("Please provide workout_plan_id")
	}
	if err := patch.Validate(); err != nil {
		return nil, false, err
	}

	plan, err := loadPlan(ctx, s.planRepo, planID)
	if err != nil {
		return nil, false, err
	}
	if err := access.Authorize(id, access.UpsertCompletion, access.PlanResource(plan)).Err(); err != nil {
		return nil, false, err
	}

	c, created, err := s.completionRepo.Upsert(ctx, plan.ID, id.UserID, patch, s.now())
	if err != nil {
		// The plan can vanish between the check and the write.
		return nil, false, storeErr(err, access.Message(access.UpsertCompletion))
	}
	return c, created, nil
}

// authorizedCompletion loads the completion and checks action against it.
// Completions outside the caller's scope look exactly like missing ones.
func (s *completionService) authorizedCompletion(ctx context.Context, id access.Identity, action access.Action, completionID string) (*domain.WorkoutCompletion, *domain.WorkoutPlan, error) {
	if err := access.CheckRole(id, action).Err(); err != nil {
		return nil, nil, err
	}
	var (
		c    *domain.WorkoutCompletion
		plan *domain.WorkoutPlan
	)
	if completionID != "" {
		found, err := s.completionRepo.GetByID(ctx, completionID)
		if err := lookupErr(err); err != nil {
			return nil, nil, err
		}
		c = found
	}
	if c != nil {
		p, err := loadPlan(ctx, s.planRepo, c.PlanID)
		if err != nil {
			return nil, nil, err
		}
		plan = p
	}
	if err := access.Authorize(id, action, access.CompletionResource(c, plan)).Err(); err != nil {
		return nil, nil, err
	}
	return c, plan, nil
}

func (s *completionService) UpdateCompletion(ctx context.Context, id access.Identity, completionID string, patch domain.CompletionPatch) (*domain.WorkoutCompletion, error) {
	if err := access.CheckRole(id, access.UpdateCompletion).Err(); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	c, _, err := s.authorizedCompletion(ctx, id, access.UpdateCompletion, completionID)
	if err != nil {
		return nil, err
	}

	patch.Apply(c, s.now())
	if err := s.completionRepo.Update(ctx, c); err != nil {
		return nil, storeErr(err, access.Message(access.UpdateCompletion))
	}
	return c, nil
}

func (s *completionService) DeleteCompletion(ctx context.Context, id access.Identity, completionID string) error {
	c, _, err := s.authorizedCompletion(ctx, id, access.DeleteCompletion, completionID)
	if err != nil {
		return err
	}
	if err := s.completionRepo.Delete(ctx, c.ID, id.UserID); err != nil {
		return storeErr(err, access.Message(access.DeleteCompletion))
	}
	if c.MediaKey != nil {
		removeMedia(ctx, s.files, s.log, *c.MediaKey)
	}
	return nil
}

func (s *completionService) ListForClient(ctx context.Context, id access.Identity, clientID string) ([]domain.CompletionDetails, error) {
	if err := access.CheckRole(id, access.ListClientCompletions).Err(); err != nil {
		return nil, err
	}
	res, clientID, err := clientScope(ctx, s.userRepo, id, clientID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(id, access.ListClientCompletions, res).Err(); err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if len(completions) == 0 {
		return []domain.CompletionDetails{}, nil
	}

	planIDs := make([]string, 0, len(completions))
	for _, c := range completions {
		planIDs = append(planIDs, c.PlanID)
	}
	plans, err := s.planRepo.GetByIDs(ctx, dedupe(planIDs))
	if err != nil {
		return nil, storeErr(err, "")
	}
	coachIDs := make([]string, 0, len(plans))
	for _, p := range plans {
		coachIDs = append(coachIDs, p.CoachID)
	}
	coaches, err := s.userRepo.GetByIDs(ctx, dedupe(coachIDs))
	if err != nil {
		return nil, storeErr(err, "")
	}

	out := make([]domain.CompletionDetails, 0, len(completions))
	for _, c := range completions {
		d := domain.CompletionDetails{WorkoutCompletion: c}
		if p, ok := plans[c.PlanID]; ok {
			d.Plan = &domain.PlanSummary{
				ID:          p.ID,
				Date:        p.Date,
				Topic:       p.Topic,
				Description: p.Description,
				Coach:       domain.SummaryOf(coaches[p.CoachID]),
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *completionService) ListForPlan(ctx context.Context, id access.Identity, planID string) ([]domain.CompletionDetails, error) {
	if err := access.CheckRole(id, access.ListPlanCompletions).Err(); err != nil {
		return nil, err
	}
	plan, err := loadPlan(ctx, s.planRepo, planID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(id, access.ListPlanCompletions, access.PlanResource(plan)).Err(); err != nil {
		return nil, err
	}

	completions, err := s.completionRepo.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, storeErr(err, "")
	}
	clientIDs := make([]string, 0, len(completions))
	for _, c := range completions {
		clientIDs = append(clientIDs, c.ClientID)
	}
	clients, err := s.userRepo.GetByIDs(ctx, dedupe(clientIDs))
	if err != nil {
		return nil, storeErr(err, "")
	}

	out := make([]domain.CompletionDetails, 0, len(completions))
	for _, c := range completions {
		out = append(out, domain.CompletionDetails{
			WorkoutCompletion: c,
			Client:            domain.SummaryOf(clients[c.ClientID]),
		})
	}
	return out, nil
}

func (s *completionService) MediaUploadURL(ctx context.Context, id access.Identity, completionID, contentType string) (*MediaUpload, error) {
	if s.files == nil {
		return nil, ErrMediaDisabled
	}
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return nil, ErrInvalidMediaType
	}
	c, _, err := s.authorizedCompletion(ctx, id, access.UploadCompletionMedia, completionID)
	if err != nil {
		return nil, err
	}

	key := storage.CompletionMediaKey(c.ID)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, domain.Internal("Failed to generate upload URL", err)
	}
	return &MediaUpload{URL: url, Key: key, ExpiresAt: s.now().Add(storage.DefaultPresignedURLExpiry)}, nil
}

// ConfirmMedia attaches an uploaded object to the completion, replacing any
// previous one.
func (s *completionService) ConfirmMedia(ctx context.Context, id access.Identity, completionID, key string) (*domain.WorkoutCompletion, error) {
	if s.files == nil {
		return nil, ErrMediaDisabled
	}
	c, _, err := s.authorizedCompletion(ctx, id, access.UploadCompletionMedia, completionID)
	if err != nil {
		return nil, err
	}
	if err := storage.CheckCompletionMediaKey(c.ID, key); err != nil {
		return nil, ErrInvalidMediaKey
	}

	previous := c.MediaKey
	if err := s.completionRepo.SetMediaKey(ctx, c.ID, id.UserID, &key); err != nil {
		return nil, storeErr(err, access.Message(access.UploadCompletionMedia))
	}
	if previous != nil && *previous != key {
		removeMedia(ctx, s.files, s.log, *previous)
	}
	c.MediaKey = &key
	return c, nil
}

func (s *completionService) MediaURL(ctx context.Context, id access.Identity, completionID string) (string, time.Time, error) {
	if s.files == nil {
		return "", time.Time{}, ErrMediaDisabled
	}
	c, _, err := s.authorizedCompletion(ctx, id, access.ReadCompletionMedia, completionID)
	if err != nil {
		return "", time.Time{}, err
	}
	if c.MediaKey == nil {
		return "", time.Time{}, ErrNoMedia
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, *c.MediaKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", time.Time{}, domain.Internal("Failed to generate download URL", err)
	}
	return url, s.now().Add(storage.DefaultPresignedURLExpiry), nil
}
