package domain

import "time"

// Bounds for WorkoutCompletion.DifficultyRating.
const (
	MinDifficultyRating = 1
	MaxDifficultyRating = 5
)

// WorkoutCompletion is a client's report against one plan. There is at most
// one per (PlanID, ClientID).
type WorkoutCompletion struct {
	ID               string    `db:"id" bson:"_id"`
	PlanID           string    `db:"workout_plan_id" bson:"planId"`
	ClientID         string    `db:"client_id" bson:"clientId"`
	Completed        bool      `db:"completed" bson:"completed"`
	CompletionDate   time.Time `db:"completion_date" bson:"completionDate"`
	Feedback         *string   `db:"feedback" bson:"feedback"`
	DifficultyRating *int      `db:"difficulty_rating" bson:"difficultyRating"`
	MediaKey         *string   `db:"media_key" bson:"mediaKey,omitempty"` // Object storage key of proof media
	CreatedAt        time.Time `db:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" bson:"updatedAt"`
}

// CompletionPatch carries the client-supplied fields of an upsert or update.
type CompletionPatch struct {
	Completed        Optional[bool]
	Feedback         Optional[string]
	DifficultyRating Optional[int]
}

// Validate rejects values that can never be stored.
func (cp CompletionPatch) Validate() error {
	if cp.Completed.Set && cp.Completed.Null {
		return Validation("completed cannot be null")
	}
	if cp.DifficultyRating.Present() {
		r := cp.DifficultyRating.Value
		if r < MinDifficultyRating || r > MaxDifficultyRating {
			return Validation("difficulty_rating must be between 1 and 5")
		}
	}
	return nil
}

// Apply merges the supplied fields into c and refreshes the completion date.
func (cp CompletionPatch) Apply(c *WorkoutCompletion, now time.Time) {
	if cp.Completed.Present() {
		c.Completed = cp.Completed.Value
	}
	if cp.Feedback.Set {
		c.Feedback = cp.Feedback.Ptr()
	}
	if cp.DifficultyRating.Set {
		c.DifficultyRating = cp.DifficultyRating.Ptr()
	}
	c.CompletionDate = now
	c.UpdatedAt = now
}

// PlanSummary is the plan projection embedded in a client's completion list.
type PlanSummary struct {
	ID          string
	Date        time.Time
	Topic       string
	Description *string
	Coach       *UserSummary
}

// CompletionDetails is a completion with the context its listing needs:
// the plan for a client's history, the client for a plan's history.
type CompletionDetails struct {
	WorkoutCompletion
	Plan   *PlanSummary
	Client *UserSummary
}
