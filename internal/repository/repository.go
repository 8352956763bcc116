package repository

import (
	"alcyxob/fit-coach/internal/domain"
	"context"
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound    = RepositoryError("not found")
	ErrDuplicate   = RepositoryError("duplicate key")
	ErrUnavailable = RepositoryError("storage unavailable")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Users are stored flat (role + nullable coach reference) and decoded
// through domain.NewUser.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (string, error) // ErrDuplicate on email
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
	// GetClientOfCoach returns ErrNotFound unless clientID is a client whose coach is coachID.
	GetClientOfCoach(ctx context.Context, coachID, clientID string) (*domain.Client, error)
	ListClients(ctx context.Context, coachID string) ([]*domain.Client, error)
	ListCoaches(ctx context.Context) ([]*domain.Coach, error)
	UpdateName(ctx context.Context, id, name string) (domain.User, error)
}

// ExerciseRepository defines the interface for the global exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
}

// WorkoutPlanRepository defines the interface for plans and their exercise rows.
type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (string, error)
	GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.WorkoutPlan, error)
	// Update overwrites client, date, topic and description.
	Update(ctx context.Context, plan *domain.WorkoutPlan) error
	// DeleteCascade removes the plan, its exercise rows and its completions in
	// one transaction. It returns the media keys of the removed completions.
	DeleteCascade(ctx context.Context, id string) ([]string, error)
	ListByCoach(ctx context.Context, coachID string) ([]domain.WorkoutPlan, error)   // Newest date first
	ListByClient(ctx context.Context, clientID string) ([]domain.WorkoutPlan, error) // Newest date first
	AddExercise(ctx context.Context, pe *domain.PlanExercise) (string, error)
	ListExercises(ctx context.Context, planIDs []string) ([]domain.PlanExerciseDetail, error)
}

// CompletionRepository defines the interface for workout completions.
type CompletionRepository interface {
	// Upsert inserts or merges the completion for (planID, clientID) in a single
	// atomic statement. created reports whether a new row was inserted.
	Upsert(ctx context.Context, planID, clientID string, patch domain.CompletionPatch, now time.Time) (c *domain.WorkoutCompletion, created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.WorkoutCompletion, error)
	// Update writes completed, feedback, rating and dates where id and client match.
	Update(ctx context.Context, c *domain.WorkoutCompletion) error
	Delete(ctx context.Context, id, clientID string) error
	ListByClient(ctx context.Context, clientID string) ([]domain.WorkoutCompletion, error) // Newest completion first
	ListByPlan(ctx context.Context, planID string) ([]domain.WorkoutCompletion, error)     // Newest completion first
	SetMediaKey(ctx context.Context, id, clientID string, key *string) error
}

// Store bundles the repositories of one backend together with its teardown.
type Store struct {
	Users       UserRepository
	Exercises   ExerciseRepository
	Plans       WorkoutPlanRepository
	Completions CompletionRepository
	Close       func(ctx context.Context) error
}
