package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securebdd/accounts-api/internal/core/domain"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	userIDCounter      = "user_id"
)

// UserRepository persists accounts in MongoDB. Numeric ids are allocated
// from an atomic counter document, so they behave like the auto-increment
// ids of a relational store.
type UserRepository struct {
	users    *mongo.Collection
	counters *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:    db.Collection(usersCollection),
		counters: db.Collection(countersCollection),
	}
}

type mongoUser struct {
	ID           int64  `bson:"_id"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"password_hash"`
	FirstName    string `bson:"first_name,omitempty"`
	LastName     string `bson:"last_name,omitempty"`
	Role         string `bson:"role"`
	CreatedAt    int64  `bson:"created_at"`
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure email index: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoUser{
		ID:           id,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt.Unix(),
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = id
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var mu mongoUser
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoUser
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]domain.User, 0, len(docs))
	for _, mu := range docs {
		users = append(users, *mu.toDomain())
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// nextID atomically increments and returns the user id sequence.
func (r *UserRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userIDCounter},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	return counter.Seq, nil
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		FirstName:    mu.FirstName,
		LastName:     mu.LastName,
		Role:         mu.Role,
		CreatedAt:    unixToTime(mu.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
