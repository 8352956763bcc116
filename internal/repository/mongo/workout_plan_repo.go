package mongo

import (
	"context"
	"fmt"
	"time"

	"alcyxob/fit-coach/internal/domain"
	"alcyxob/fit-coach/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	planCollectionName         = "workout_plans"
	planExerciseCollectionName = "plan_exercises"
)

type mongoWorkoutPlanRepository struct {
	client      *mongo.Client
	plans       *mongo.Collection
	rows        *mongo.Collection
	exercises   *mongo.Collection
	completions *mongo.Collection
}

// NewMongoWorkoutPlanRepository creates the plan repository. Plan exercise
// rows live in their own collection keyed by planId.
func NewMongoWorkoutPlanRepository(db *mongo.Database) repository.WorkoutPlanRepository {
	return &mongoWorkoutPlanRepository{
		client:      db.Client(),
		plans:       db.Collection(planCollectionName),
		rows:        db.Collection(planExerciseCollectionName),
		exercises:   db.Collection(exerciseCollectionName),
		completions: db.Collection(completionCollectionName),
	}
}

func (r *mongoWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (string, error) {
	plan.ID = uuid.NewString()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if _, err := r.plans.InsertOne(ctx, plan); err != nil {
		return "", mapErr(err)
	}
	return plan.ID, nil
}

func (r *mongoWorkoutPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	if err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		return nil, mapErr(err)
	}
	return &plan, nil
}

func (r *mongoWorkoutPlanRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.WorkoutPlan, error) {
	result := make(map[string]domain.WorkoutPlan, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	plans, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		result[p.ID] = p
	}
	return result, nil
}

func (r *mongoWorkoutPlanRepository) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	plan.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"clientId":    plan.ClientID,
		"date":        plan.Date,
		"topic":       plan.Topic,
		"description": plan.Description,
		"updatedAt":   plan.UpdatedAt,
	}}
	res, err := r.plans.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the plan, its exercise rows and completions in one
// multi-document transaction. Requires a replica set deployment.
func (r *mongoWorkoutPlanRepository) DeleteCascade(ctx context.Context, id string) ([]string, error) {
	session, err := r.client.StartSession()
	if err != nil {
		return nil, mapErr(err)
	}
	defer session.EndSession(ctx)

	keys, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var withMedia []domain.WorkoutCompletion
		cursor, err := r.completions.Find(sc, bson.M{"planId": id, "mediaKey": bson.M{"$ne": nil}})
		if err != nil {
			return nil, err
		}
		if err = cursor.All(sc, &withMedia); err != nil {
			return nil, err
		}
		if _, err := r.rows.DeleteMany(sc, bson.M{"planId": id}); err != nil {
			return nil, fmt.Errorf("cascade %s: %w", planExerciseCollectionName, err)
		}
		if _, err := r.completions.DeleteMany(sc, bson.M{"planId": id}); err != nil {
			return nil, fmt.Errorf("cascade %s: %w", completionCollectionName, err)
		}
		res, err := r.plans.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("cascade %s: %w", planCollectionName, err)
		}
		if res.DeletedCount == 0 {
			return nil, repository.ErrNotFound
		}
		keys := make([]string, 0, len(withMedia))
		for _, c := range withMedia {
			if c.MediaKey != nil {
				keys = append(keys, *c.MediaKey)
			}
		}
		return keys, nil
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return keys.([]string), nil
}

func (r *mongoWorkoutPlanRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.WorkoutPlan, error) {
	cursor, err := r.plans.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)

	plans := []domain.WorkoutPlan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, mapErr(err)
	}
	return plans, nil
}

var newestDateFirst = options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})

func (r *mongoWorkoutPlanRepository) ListByCoach(ctx context.Context, coachID string) ([]domain.WorkoutPlan, error) {
	return r.find(ctx, bson.M{"coachId": coachID}, newestDateFirst)
}

func (r *mongoWorkoutPlanRepository) ListByClient(ctx context.Context, clientID string) ([]domain.WorkoutPlan, error) {
	return r.find(ctx, bson.M{"clientId": clientID}, newestDateFirst)
}

func (r *mongoWorkoutPlanRepository) AddExercise(ctx context.Context, pe *domain.PlanExercise) (string, error) {
	pe.ID = uuid.NewString()
	pe.CreatedAt = time.Now().UTC()

	if _, err := r.rows.InsertOne(ctx, pe); err != nil {
		return "", mapErr(err)
	}
	return pe.ID, nil
}

// ListExercises loads the rows of every plan in planIDs, then the exercises
// they reference, and joins them in row insertion order.
func (r *mongoWorkoutPlanRepository) ListExercises(ctx context.Context, planIDs []string) ([]domain.PlanExerciseDetail, error) {
	details := []domain.PlanExerciseDetail{}
	if len(planIDs) == 0 {
		return details, nil
	}

	cursor, err := r.rows.Find(ctx, bson.M{"planId": bson.M{"$in": planIDs}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, mapErr(err)
	}
	var rows []domain.PlanExercise
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, mapErr(err)
	}
	if len(rows) == 0 {
		return details, nil
	}

	exerciseIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		exerciseIDs = append(exerciseIDs, row.ExerciseID)
	}
	cursor, err = r.exercises.Find(ctx, bson.M{"_id": bson.M{"$in": exerciseIDs}})
	if err != nil {
		return nil, mapErr(err)
	}
	var exercises []domain.Exercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, mapErr(err)
	}
	byID := make(map[string]domain.Exercise, len(exercises))
	for _, e := range exercises {
		byID[e.ID] = e
	}

	for _, row := range rows {
		e, ok := byID[row.ExerciseID]
		if !ok {
			continue // catalog entry removed out of band
		}
		details = append(details, domain.PlanExerciseDetail{PlanExercise: row, Exercise: e})
	}
	return details, nil
}

func planIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: -1}}},
	}
}

func planExerciseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "planId", Value: 1}}},
	}
}
