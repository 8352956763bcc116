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

const userCollectionName = "users"

// userDocument is the stored shape of domain.User.
type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	CoachID      *string   `bson:"coachId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d userDocument) toDomain() (domain.User, error) {
	acc := domain.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	u, err := domain.NewUser(acc, domain.Role(d.Role), d.CoachID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", d.ID, err)
	}
	return u, nil
}

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user and assigns its ID and timestamps.
func (r *mongoUserRepository) Create(ctx context.Context, user domain.User) (string, error) {
	acc := user.Base()
	acc.ID = uuid.NewString()
	now := time.Now().UTC()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	doc := userDocument{
		ID:           acc.ID,
		Name:         acc.Name,
		Email:        acc.Email,
		PasswordHash: acc.PasswordHash,
		Role:         string(user.Role()),
		CoachID:      domain.CoachIDOf(user),
		CreatedAt:    acc.CreatedAt,
		UpdatedAt:    acc.UpdatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", mapErr(err)
	}
	return acc.ID, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toDomain()
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, mapErr(err)
	}
	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	result := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	users, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.Base().ID] = u
	}
	return result, nil
}

func (r *mongoUserRepository) GetClientOfCoach(ctx context.Context, coachID, clientID string) (*domain.Client, error) {
	u, err := r.findOne(ctx, bson.M{"_id": clientID, "role": domain.RoleClient, "coachId": coachID})
	if err != nil {
		return nil, err
	}
	client, ok := u.(*domain.Client)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return client, nil
}

var byName = options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

func (r *mongoUserRepository) ListClients(ctx context.Context, coachID string) ([]*domain.Client, error) {
	users, err := r.find(ctx, bson.M{"role": domain.RoleClient, "coachId": coachID}, byName)
	if err != nil {
		return nil, err
	}
	clients := make([]*domain.Client, 0, len(users))
	for _, u := range users {
		if c, ok := u.(*domain.Client); ok {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

func (r *mongoUserRepository) ListCoaches(ctx context.Context) ([]*domain.Coach, error) {
	users, err := r.find(ctx, bson.M{"role": domain.RoleCoach}, byName)
	if err != nil {
		return nil, err
	}
	coaches := make([]*domain.Coach, 0, len(users))
	for _, u := range users {
		if c, ok := u.(*domain.Coach); ok {
			coaches = append(coaches, c)
		}
	}
	return coaches, nil
}

func (r *mongoUserRepository) UpdateName(ctx context.Context, id, name string) (domain.User, error) {
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		return nil, mapErr(err)
	}
	return doc.toDomain()
}

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true), // Coaches have no coachId
		},
	}
}
