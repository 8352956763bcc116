package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('coach', 'client')),
    coach_id      UUID REFERENCES users(id),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK ((role = 'client') = (coach_id IS NOT NULL))
);
CREATE INDEX IF NOT EXISTS users_coach_id_idx ON users (coach_id);

CREATE TABLE IF NOT EXISTS exercises (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workout_plans (
    id          UUID PRIMARY KEY,
    coach_id    UUID NOT NULL REFERENCES users(id),
    client_id   UUID NOT NULL REFERENCES users(id),
    date        DATE NOT NULL,
    topic       TEXT NOT NULL DEFAULT 'General Workout',
    description TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workout_plans_coach_id_idx ON workout_plans (coach_id);
CREATE INDEX IF NOT EXISTS workout_plans_client_id_idx ON workout_plans (client_id);

CREATE TABLE IF NOT EXISTS plan_exercises (
    id              UUID PRIMARY KEY,
    workout_plan_id UUID NOT NULL REFERENCES workout_plans(id),
    exercise_id     UUID NOT NULL REFERENCES exercises(id),
    sets            INTEGER NOT NULL CHECK (sets > 0),
    reps            INTEGER NOT NULL CHECK (reps > 0),
    weight          DOUBLE PRECISION CHECK (weight >= 0),
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS plan_exercises_plan_idx ON plan_exercises (workout_plan_id);

CREATE TABLE IF NOT EXISTS workout_completions (
    id                UUID PRIMARY KEY,
    workout_plan_id   UUID NOT NULL REFERENCES workout_plans(id),
    client_id         UUID NOT NULL REFERENCES users(id),
    completed         BOOLEAN NOT NULL DEFAULT TRUE,
    completion_date   TIMESTAMPTZ NOT NULL DEFAULT now(),
    feedback          TEXT,
    difficulty_rating INTEGER CHECK (difficulty_rating BETWEEN 1 AND 5),
    media_key         TEXT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (workout_plan_id, client_id)
);
CREATE INDEX IF NOT EXISTS workout_completions_client_idx ON workout_completions (client_id);
`

// Migrate creates any missing tables and indexes. Existing tables are left as they are.
func Migrate(ctx context.Context, db *DB) error {
	return db.withConn(ctx, func(conn *sqlx.Conn) error {
		if _, err := conn.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return nil
	})
}
