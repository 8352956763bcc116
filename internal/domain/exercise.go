// internal/domain/exercise.go
package domain

import "time"

// Exercise represents a single exercise definition in the shared catalog.
// Catalog entries are not owned by any coach.
type Exercise struct {
	ID          string    `db:"id" bson:"_id"`
	Name        string    `db:"name" bson:"name"`
	Description *string   `db:"description" bson:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" bson:"updatedAt"`
}
