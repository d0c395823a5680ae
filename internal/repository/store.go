package repository

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a user with the same email already exists.
	ErrConflict = errors.New("email already exists")
)

// UserFilter narrows FindUser. Empty fields are ignored; set fields must match exactly.
type UserFilter struct {
	Email string
	Role  models.Role
}

func (f UserFilter) matches(user models.User) bool {
	if f.Email != "" && user.Email != f.Email {
		return false
	}
	if f.Role != "" && user.Role != f.Role {
		return false
	}
	return true
}

// SubmissionUpdate carries the grading fields written by UpdateSubmission.
// Nil fields are left untouched.
type SubmissionUpdate struct {
	Score    *float64
	Feedback *string
	GradedAt *time.Time
}

func (u SubmissionUpdate) apply(submission *models.Submission) {
	if u.Score != nil {
		score := *u.Score
		submission.Score = &score
	}
	if u.Feedback != nil {
		feedback := *u.Feedback
		submission.Feedback = &feedback
	}
	if u.GradedAt != nil {
		gradedAt := *u.GradedAt
		submission.GradedAt = &gradedAt
	}
}

// Store persists users and submissions. Implementations are interchangeable.
type Store interface {
	FindUser(ctx context.Context, filter UserFilter) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	InsertUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, email string) (bool, error)

	InsertSubmission(ctx context.Context, submission *models.Submission) error
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	// ListSubmissionsByStudent matches key against the student field directly
	// and against the display name of the user whose email equals key.
	ListSubmissionsByStudent(ctx context.Context, key string) ([]models.Submission, error)
	FindSubmission(ctx context.Context, id string) (models.Submission, error)
	UpdateSubmission(ctx context.Context, id string, update SubmissionUpdate) (models.Submission, error)
	DeleteSubmission(ctx context.Context, id string) (bool, error)

	Close(ctx context.Context) error
}

func stripPasswords(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, user := range users {
		out = append(out, user.WithoutPassword())
	}
	return out
}
