package mongo

import (
	"context"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const completionCollectionName = "workout_completions"

type mongoCompletionRepository struct {
	collection *mongo.Collection
}

// NewMongoCompletionRepository creates the completion repository.
func NewMongoCompletionRepository(db *mongo.Database) repository.CompletionRepository {
	return &mongoCompletionRepository{
		collection: db.Collection(completionCollectionName),
	}
}

// upsertUpdate builds the update document: supplied fields go to $set,
// defaults for unsupplied ones only apply on insert.
func upsertUpdate(id string, patch domain.CompletionPatch, now time.Time) bson.M {
	set := bson.M{"completionDate": now, "updatedAt": now}
	onInsert := bson.M{"_id": id, "createdAt": now}

	if patch.Completed.Present() {
		set["completed"] = patch.Completed.Value
	} else {
		onInsert["completed"] = true
	}
	if patch.Feedback.Set {
		set["feedback"] = patch.Feedback.Ptr()
	} else {
		onInsert["feedback"] = nil
	}
	if patch.DifficultyRating.Set {
		set["difficultyRating"] = patch.DifficultyRating.Ptr()
	} else {
		onInsert["difficultyRating"] = nil
	}
	return bson.M{"$set": set, "$setOnInsert": onInsert}
}

// Upsert relies on the unique (planId, clientId) index. Two concurrent
// upserts can both miss and race to insert; the loser gets a duplicate key
// error and retries once as an update.
func (r *mongoCompletionRepository) Upsert(ctx context.Context, planID, clientID string, patch domain.CompletionPatch, now time.Time) (*domain.WorkoutCompletion, bool, error) {
	filter := bson.M{"planId": planID, "clientId": clientID}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		id := uuid.NewString()
		var c domain.WorkoutCompletion
		err = r.collection.FindOneAndUpdate(ctx, filter, upsertUpdate(id, patch, now), opts).Decode(&c)
		if err == nil {
			return &c, c.ID == id, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return nil, false, mapErr(err)
}

func (r *mongoCompletionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutCompletion, error) {
	var c domain.WorkoutCompletion
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *mongoCompletionRepository) updateOwned(ctx context.Context, id, clientID string, set bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "clientId": clientID}, bson.M{"$set": set})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoCompletionRepository) Update(ctx context.Context, c *domain.WorkoutCompletion) error {
	return r.updateOwned(ctx, c.ID, c.ClientID, bson.M{
		"completed":        c.Completed,
		"feedback":         c.Feedback,
		"difficultyRating": c.DifficultyRating,
		"completionDate":   c.CompletionDate,
		"updatedAt":        c.UpdatedAt,
	})
}

func (r *mongoCompletionRepository) SetMediaKey(ctx context.Context, id, clientID string, key *string) error {
	return r.updateOwned(ctx, id, clientID, bson.M{"mediaKey": key, "updatedAt": time.Now().UTC()})
}

func (r *mongoCompletionRepository) Delete(ctx context.Context, id, clientID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "clientId": clientID})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoCompletionRepository) list(ctx context.Context, filter bson.M) ([]domain.WorkoutCompletion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completionDate", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)

	completions := []domain.WorkoutCompletion{}
	if err = cursor.All(ctx, &completions); err != nil {
		return nil, mapErr(err)
	}
	return completions, nil
}

func (r *mongoCompletionRepository) ListByClient(ctx context.Context, clientID string) ([]domain.WorkoutCompletion, error) {
	return r.list(ctx, bson.M{"clientId": clientID})
}

func (r *mongoCompletionRepository) ListByPlan(ctx context.Context, planID string) ([]domain.WorkoutCompletion, error) {
	return r.list(ctx, bson.M{"planId": planID})
}

func completionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "completionDate", Value: -1}}},
	}
}
