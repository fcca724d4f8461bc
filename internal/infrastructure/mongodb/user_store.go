package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/priceview/backend/internal/domain"
)

const usersCollection = "users"

// UserStore implements domain.UserStore over the auth database.
type UserStore struct {
	client   *mongo.Client
	database string
}

// NewUserStore creates a user store bound to the auth database.
func NewUserStore(client *mongo.Client, database string) *UserStore {
	return &UserStore{client: client, database: database}
}

func (s *UserStore) users() *mongo.Collection {
	return s.client.Database(s.database).Collection(usersCollection)
}

// FindByEmail returns the account with the given email, or (nil, nil).
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns the account with the given id, or (nil, nil).
func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	return &user, nil
}

// Insert stores a new account and returns its generated id.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) (primitive.ObjectID, error) {
	result, err := s.users().InsertOne(ctx, u)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("inserting user: %w", err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

// Update sets the given fields on one account document.
func (s *UserStore) Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	_, err := s.users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}
