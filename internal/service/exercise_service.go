package service

import (
	"context"
	"strings"

	"alcyxob/fit-coach/internal/access"
	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"
)

const msgExerciseNotFound = "Exercise not found"

// ExerciseService manages the global exercise catalog.
type ExerciseService interface {
	CreateExercise(ctx context.Context, id access.Identity, name string, description *string) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise adds a catalog entry. Any coach may create one; entries are
// not owned afterwards.
func (s *exerciseService) CreateExercise(ctx context.Context, id access.Identity, name string, description *string) (*domain.Exercise, error) {
	if err := access.Authorize(id, access.CreateExercise, access.None).Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("Please provide an exercise name")
	}

	exercise := &domain.Exercise{Name: name, Description: description}
	if _, err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, storeErr(err, "")
	}
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, storeErr(err, msgExerciseNotFound)
	}
	return exercise, nil
}

func (s *exerciseService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return exercises, nil
}
