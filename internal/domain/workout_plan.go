// internal/domain/workout_plan.go
package domain

import "time"

// DefaultPlanTopic is applied when a plan is created without a topic.
const DefaultPlanTopic = "General Workout"

// WorkoutPlan is a dated workout assigned by a coach to one of the coach's clients.
type WorkoutPlan struct {
	ID          string    `db:"id" bson:"_id"`
	CoachID     string    `db:"coach_id" bson:"coachId"`   // Who wrote the plan
	ClientID    string    `db:"client_id" bson:"clientId"` // Who the plan is for; must belong to CoachID
	Date        time.Time `db:"date" bson:"date"`          // Calendar day, stored at UTC midnight
	Topic       string    `db:"topic" bson:"topic"`
	Description *string   `db:"description" bson:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" bson:"updatedAt"`
}

// PlanExercise binds one catalog exercise to a plan with its prescription.
// It lives and dies with its plan.
type PlanExercise struct {
	ID         string    `db:"id" bson:"_id"`
	PlanID     string    `db:"workout_plan_id" bson:"planId"`
	ExerciseID string    `db:"exercise_id" bson:"exerciseId"`
	Sets       int       `db:"sets" bson:"sets"`
	Reps       int       `db:"reps" bson:"reps"`
	Weight     *float64  `db:"weight" bson:"weight,omitempty"`
	CreatedAt  time.Time `db:"created_at" bson:"createdAt"`
}

// PlanExerciseDetail is a join row together with the exercise it references.
type PlanExerciseDetail struct {
	PlanExercise
	Exercise Exercise
}

// PlanDetails is a plan with its participants and composed exercises.
type PlanDetails struct {
	WorkoutPlan
	Coach     *UserSummary
	Client    *UserSummary
	Exercises []PlanExerciseDetail
}

// PlanPatch carries the fields of a partial plan update.
type PlanPatch struct {
	ClientID    Optional[string]
	Date        Optional[time.Time]
	Topic       Optional[string]
	Description Optional[string]
}

// Apply merges the supplied fields into p. An explicit null topic restores
// the default topic; an explicit null description clears it.
func (pp PlanPatch) Apply(p *WorkoutPlan) {
	if pp.ClientID.Present() {
		p.ClientID = pp.ClientID.Value
	}
	if pp.Date.Present() {
		p.Date = pp.Date.Value
	}
	if pp.Topic.Set {
		if pp.Topic.Null {
			p.Topic = DefaultPlanTopic
		} else {
			p.Topic = pp.Topic.Value
		}
	}
	if pp.Description.Set {
		p.Description = pp.Description.Ptr()
	}
}
