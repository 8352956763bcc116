package postgres

import (
	"context"
	"fmt"

	"alcyxob/fit-coach/internal/repository"

	"github.com/jmoiron/sqlx"
)

// Dependent is a table holding a foreign key to a cascade parent.
type Dependent struct {
	Table  string
	Column string
}

// Cascade deletes a parent row together with every dependent row, children
// first, inside the caller's transaction. Table and column names are fixed
// identifiers, never request input.
type Cascade struct {
	Parent     string
	Key        string
	Dependents []Dependent
}

// Run deletes the rows for id. It returns repository.ErrNotFound when the
// parent row does not exist, so the enclosing transaction rolls back.
func (c Cascade) Run(ctx context.Context, tx *sqlx.Tx, id string) error {
	for _, d := range c.Dependents {
		q := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", d.Table, d.Column)
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("cascade %s: %w", d.Table, err)
		}
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", c.Parent, c.Key)
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("cascade %s: %w", c.Parent, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// planCascade removes a workout plan with its exercise rows and completions.
var planCascade = Cascade{
	Parent: "workout_plans",
	Key:    "id",
	Dependents: []Dependent{
		{Table: "plan_exercises", Column: "workout_plan_id"},
		{Table: "workout_completions", Column: "workout_plan_id"},
	},
}
