package postgres

import (
	"context"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	planColumns = `id, coach_id, client_id, date, topic, description, created_at, updated_at`
	dateLayout  = "2006-01-02"
)

// planExerciseRow is a plan_exercises row joined with its exercise.
type planExerciseRow struct {
	ID                  string    `db:"id"`
	PlanID              string    `db:"workout_plan_id"`
	ExerciseID          string    `db:"exercise_id"`
	Sets                int       `db:"sets"`
	Reps                int       `db:"reps"`
	Weight              *float64  `db:"weight"`
	CreatedAt           time.Time `db:"created_at"`
	ExerciseName        string    `db:"exercise_name"`
	ExerciseDescription *string   `db:"exercise_description"`
	ExerciseCreatedAt   time.Time `db:"exercise_created_at"`
	ExerciseUpdatedAt   time.Time `db:"exercise_updated_at"`
}

func (r planExerciseRow) toDomain() domain.PlanExerciseDetail {
	return domain.PlanExerciseDetail{
		PlanExercise: domain.PlanExercise{
			ID:         r.ID,
			PlanID:     r.PlanID,
			ExerciseID: r.ExerciseID,
			Sets:       r.Sets,
			Reps:       r.Reps,
			Weight:     r.Weight,
			CreatedAt:  r.CreatedAt,
		},
		Exercise: domain.Exercise{
			ID:          r.ExerciseID,
			Name:        r.ExerciseName,
			Description: r.ExerciseDescription,
			CreatedAt:   r.ExerciseCreatedAt,
			UpdatedAt:   r.ExerciseUpdatedAt,
		},
	}
}

type pgWorkoutPlanRepository struct {
	db *DB
}

// NewWorkoutPlanRepository creates the plan repository on the shared pool.
func NewWorkoutPlanRepository(db *DB) repository.WorkoutPlanRepository {
	return &pgWorkoutPlanRepository{db: db}
}

func (r *pgWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (string, error) {
	plan.ID = uuid.NewString()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO workout_plans (`+planColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			plan.ID, plan.CoachID, plan.ClientID, plan.Date.Format(dateLayout), plan.Topic, plan.Description, plan.CreatedAt, plan.UpdatedAt)
		return err
	})
	if err != nil {
		return "", err
	}
	return plan.ID, nil
}

func (r *pgWorkoutPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	var p domain.WorkoutPlan
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &p, `SELECT `+planColumns+` FROM workout_plans WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgWorkoutPlanRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.WorkoutPlan, error) {
	plans := make(map[string]domain.WorkoutPlan, len(ids))
	if len(ids) == 0 {
		return plans, nil
	}
	var rows []domain.WorkoutPlan
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, `SELECT `+planColumns+` FROM workout_plans WHERE id = ANY($1)`, pq.Array(ids))
	})
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		plans[p.ID] = p
	}
	return plans, nil
}

func (r *pgWorkoutPlanRepository) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	return r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, `
			UPDATE workout_plans
			SET client_id = $2, date = $3, topic = $4, description = $5, updated_at = $6
			WHERE id = $1`,
			plan.ID, plan.ClientID, plan.Date.Format(dateLayout), plan.Topic, plan.Description, plan.UpdatedAt)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *pgWorkoutPlanRepository) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	var mediaKeys []string
	err := r.db.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &mediaKeys,
			`SELECT media_key FROM workout_completions WHERE workout_plan_id = $1 AND media_key IS NOT NULL`, id); err != nil {
			return err
		}
		return planCascade.Run(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}
	return mediaKeys, nil
}

func (r *pgWorkoutPlanRepository) list(ctx context.Context, column, id string) ([]domain.WorkoutPlan, error) {
	plans := []domain.WorkoutPlan{}
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &plans,
			`SELECT `+planColumns+` FROM workout_plans WHERE `+column+` = $1 ORDER BY date DESC, created_at DESC`, id)
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *pgWorkoutPlanRepository) ListByCoach(ctx context.Context, coachID string) ([]domain.WorkoutPlan, error) {
	return r.list(ctx, "coach_id", coachID)
}

func (r *pgWorkoutPlanRepository) ListByClient(ctx context.Context, clientID string) ([]domain.WorkoutPlan, error) {
	return r.list(ctx, "client_id", clientID)
}

func (r *pgWorkoutPlanRepository) AddExercise(ctx context.Context, pe *domain.PlanExercise) (string, error) {
	pe.ID = uuid.NewString()
	pe.CreatedAt = time.Now().UTC()

	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		_, err := conn.ExecContext(ctx, `
			INSERT INTO plan_exercises (id, workout_plan_id, exercise_id, sets, reps, weight, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			pe.ID, pe.PlanID, pe.ExerciseID, pe.Sets, pe.Reps, pe.Weight, pe.CreatedAt)
		return err
	})
	if err != nil {
		return "", err
	}
	return pe.ID, nil
}

// ListExercises returns the exercise rows of every plan in planIDs in
// insertion order.
func (r *pgWorkoutPlanRepository) ListExercises(ctx context.Context, planIDs []string) ([]domain.PlanExerciseDetail, error) {
	details := []domain.PlanExerciseDetail{}
	if len(planIDs) == 0 {
		return details, nil
	}
	var rows []planExerciseRow
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &rows, `
			SELECT pe.id, pe.workout_plan_id, pe.exercise_id, pe.sets, pe.reps, pe.weight, pe.created_at,
			       e.name AS exercise_name, e.description AS exercise_description,
			       e.created_at AS exercise_created_at, e.updated_at AS exercise_updated_at
			FROM plan_exercises pe
			JOIN exercises e ON e.id = pe.exercise_id
			WHERE pe.workout_plan_id = ANY($1)
			ORDER BY pe.created_at`, pq.Array(planIDs))
	})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		details = append(details, row.toDomain())
	}
	return details, nil
}
