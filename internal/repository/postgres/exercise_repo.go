package postgres

import (
	"context"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const exerciseColumns = `id, name, description, created_at, updated_at`

type pgExerciseRepository struct {
	db *DB
}

// NewExerciseRepository creates the exercise catalog repository.
func NewExerciseRepository(db *DB) repository.ExerciseRepository {
	return &pgExerciseRepository{db: db}
}

func (r *pgExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	exercise.ID = uuid.NewString()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO exercises (`+exerciseColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			exercise.ID, exercise.Name, exercise.Description, exercise.CreatedAt, exercise.UpdatedAt)
		return err
	})
	if err != nil {
		return "", err
	}
	return exercise.ID, nil
}

func (r *pgExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var e domain.Exercise
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &e, `SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *pgExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &exercises, `SELECT `+exerciseColumns+` FROM exercises ORDER BY name`)
	})
	if err != nil {
		return nil, err
	}
	return exercises, nil
}
