package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

const (
	usersCollection       = "users"
	submissionsCollection = "submissions"
)

// MongoStore keeps users and submissions in two document collections.
type MongoStore struct {
	client      *mongo.Client
	users       *mongo.Collection
	submissions *mongo.Collection
}

// NewMongoStore binds the store to db. client may be nil when the caller owns its lifecycle.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:      client,
		users:       db.Collection(usersCollection),
		submissions: db.Collection(submissionsCollection),
	}
}

// EnsureIndexes creates the unique email index backing the one-user-per-email rule.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *MongoStore) FindUser(ctx context.Context, filter UserFilter) (models.User, error) {
	query := bson.M{}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}

	var user models.User
	if err := s.users.FindOne(ctx, query).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return stripPasswords(users), nil
}

func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) error {
	err := s.users.FindOne(ctx, bson.M{"email": user.Email}).Err()
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, email string) (bool, error) {
	result, err := s.users.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (s *MongoStore) InsertSubmission(ctx context.Context, submission *models.Submission) error {
	_, err := s.submissions.InsertOne(ctx, submission)
	return err
}

func (s *MongoStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	return s.findSubmissions(ctx, bson.M{})
}

func (s *MongoStore) ListSubmissionsByStudent(ctx context.Context, key string) ([]models.Submission, error) {
	keys := bson.A{key}

	var owner models.User
	err := s.users.FindOne(ctx, bson.M{"email": key}).Decode(&owner)
	switch {
	case err == nil:
		keys = append(keys, owner.Name)
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, err
	}

	return s.findSubmissions(ctx, bson.M{"student": bson.M{"$in": keys}})
}

func (s *MongoStore) findSubmissions(ctx context.Context, filter bson.M) ([]models.Submission, error) {
	cursor, err := s.submissions.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	defer cursor.Close(ctx)

	submissions := make([]models.Submission, 0)
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	return submissions, nil
}

func (s *MongoStore) FindSubmission(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := s.submissions.FindOne(ctx, bson.M{"_id": id}).Decode(&submission); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Submission{}, ErrNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *MongoStore) UpdateSubmission(ctx context.Context, id string, update SubmissionUpdate) (models.Submission, error) {
	set := bson.M{}
	if update.Score != nil {
		set["score"] = *update.Score
	}
	if update.Feedback != nil {
		set["feedback"] = *update.Feedback
	}
	if update.GradedAt != nil {
		set["gradedAt"] = *update.GradedAt
	}
	if len(set) == 0 {
		return s.FindSubmission(ctx, id)
	}

	var updated models.Submission
	err := s.submissions.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Submission{}, ErrNotFound
		}
		return models.Submission{}, err
	}
	return updated, nil
}

func (s *MongoStore) DeleteSubmission(ctx context.Context, id string) (bool, error) {
	result, err := s.submissions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Close disconnects the client when the store owns it.
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
