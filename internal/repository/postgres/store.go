package postgres

import (
	"context"

	"alcyxob/fit-coach/internal/repository"
)

// NewStore wires every repository to db. Closing the store closes the pool.
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		Users:       NewUserRepository(db),
		Exercises:   NewExerciseRepository(db),
		Plans:       NewWorkoutPlanRepository(db),
		Completions: NewCompletionRepository(db),
		Close:       func(context.Context) error { return db.Close() },
	}
}
