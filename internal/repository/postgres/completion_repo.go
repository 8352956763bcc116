package postgres

import (
	"context"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const completionColumns = `id, workout_plan_id, client_id, completed, completion_date, feedback, difficulty_rating, media_key, created_at, updated_at`

// upsertCompletionQuery inserts a completion or merges the supplied fields into
// the existing row for (plan, client). Each $8..$10 flag says whether the
// matching field was supplied; unsupplied fields keep their stored value.
// xmax is zero only for a freshly inserted tuple.
const upsertCompletionQuery = `
	INSERT INTO workout_completions AS wc
		(id, workout_plan_id, client_id, completed, completion_date, feedback, difficulty_rating, created_at, updated_at)
	VALUES ($1, $2, $3, COALESCE($4::boolean, TRUE), $5, $6::text, $7::integer, $5, $5)
	ON CONFLICT (workout_plan_id, client_id) DO UPDATE SET
		completed         = CASE WHEN $8::boolean THEN EXCLUDED.completed ELSE wc.completed END,
		feedback          = CASE WHEN $9::boolean THEN EXCLUDED.feedback ELSE wc.feedback END,
		difficulty_rating = CASE WHEN $10::boolean THEN EXCLUDED.difficulty_rating ELSE wc.difficulty_rating END,
		completion_date   = EXCLUDED.completion_date,
		updated_at        = EXCLUDED.updated_at
	RETURNING ` + completionColumns + `, (xmax = 0) AS inserted`

type upsertRow struct {
	domain.WorkoutCompletion
	Inserted bool `db:"inserted"`
}

type pgCompletionRepository struct {
	db *DB
}

// NewCompletionRepository creates the completion repository on the shared pool.
func NewCompletionRepository(db *DB) repository.CompletionRepository {
	return &pgCompletionRepository{db: db}
}

func (r *pgCompletionRepository) Upsert(ctx context.Context, planID, clientID string, patch domain.CompletionPatch, now time.Time) (*domain.WorkoutCompletion, bool, error) {
	var row upsertRow
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, upsertCompletionQuery,
			uuid.NewString(), planID, clientID,
			patch.Completed.Ptr(), now, patch.Feedback.Ptr(), patch.DifficultyRating.Ptr(),
			patch.Completed.Present(), patch.Feedback.Set, patch.DifficultyRating.Set,
		).StructScan(&row)
	})
	if err != nil {
		return nil, false, err
	}
	c := row.WorkoutCompletion
	return &c, row.Inserted, nil
}

func (r *pgCompletionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutCompletion, error) {
	var c domain.WorkoutCompletion
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &c, `SELECT `+completionColumns+` FROM workout_completions WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgCompletionRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	return r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
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

func (r *pgCompletionRepository) Update(ctx context.Context, c *domain.WorkoutCompletion) error {
	return r.exec(ctx, `
		UPDATE workout_completions
		SET completed = $3, feedback = $4, difficulty_rating = $5, completion_date = $6, updated_at = $7
		WHERE id = $1 AND client_id = $2`,
		c.ID, c.ClientID, c.Completed, c.Feedback, c.DifficultyRating, c.CompletionDate, c.UpdatedAt)
}

func (r *pgCompletionRepository) Delete(ctx context.Context, id, clientID string) error {
	return r.exec(ctx, `DELETE FROM workout_completions WHERE id = $1 AND client_id = $2`, id, clientID)
}

func (r *pgCompletionRepository) SetMediaKey(ctx context.Context, id, clientID string, key *string) error {
	return r.exec(ctx,
		`UPDATE workout_completions SET media_key = $3, updated_at = $4 WHERE id = $1 AND client_id = $2`,
		id, clientID, key, time.Now().UTC())
}

func (r *pgCompletionRepository) list(ctx context.Context, column, id string) ([]domain.WorkoutCompletion, error) {
	completions := []domain.WorkoutCompletion{}
	err := r.db.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, &completions,
			`SELECT `+completionColumns+` FROM workout_completions WHERE `+column+` = $1 ORDER BY completion_date DESC`, id)
	})
	if err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *pgCompletionRepository) ListByClient(ctx context.Context, clientID string) ([]domain.WorkoutCompletion, error) {
	return r.list(ctx, "client_id", clientID)
}

func (r *pgCompletionRepository) ListByPlan(ctx context.Context, planID string) ([]domain.WorkoutCompletion, error) {
	return r.list(ctx, "workout_plan_id", planID)
}
