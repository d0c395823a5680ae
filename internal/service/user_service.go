package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/auth"
	"github.com/noah-isme/gema-submit-api/internal/dto"
	"github.com/noah-isme/gema-submit-api/internal/models"
	"github.com/noah-isme/gema-submit-api/internal/repository"
)

// UserService manages accounts on behalf of administrators.
type UserService interface {
	Create(ctx context.Context, payload dto.CreateUserRequest) (dto.UserResponse, error)
	List(ctx context.Context) ([]dto.UserResponse, error)
	Delete(ctx context.Context, email string) error
}

type userService struct {
	store     repository.Store
	hasher    CredentialHasher
	policy    auth.Policy
	validator *validator.Validate
	listings  *ListingCache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewUserService constructs a UserService. listings may be nil.
func NewUserService(store repository.Store, hasher CredentialHasher, policy auth.Policy, validate *validator.Validate, listings *ListingCache, logger zerolog.Logger) UserService {
	if policy == nil {
		policy = auth.TrustPolicy{}
	}
	return &userService{
		store:     store,
		hasher:    hasher,
		policy:    policy,
		validator: validate,
		listings:  listings,
		logger:    logger.With().Str("component", "user_service").Logger(),
		now:       time.Now,
	}
}

func (s *userService) Create(ctx context.Context, payload dto.CreateUserRequest) (dto.UserResponse, error) {
	if err := s.policy.Authorize(ctx, auth.ActionCreateUser); err != nil {
		return dto.UserResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, ErrUserFieldsRequired
	}

	role := models.Role(payload.Role)
	if !role.Valid() {
		return dto.UserResponse{}, ErrInvalidRole
	}

	user, err := newUser(s.hasher, payload.Name, payload.Email, payload.Password, role, s.now())
	if err != nil {
		return dto.UserResponse{}, err
	}

	if err := s.store.InsertUser(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return dto.UserResponse{}, ErrEmailTaken
		}
		return dto.UserResponse{}, err
	}

	s.listings.Invalidate(ctx)
	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user created")
	return dto.NewUserSummary(user), nil
}

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	if err := s.policy.Authorize(ctx, auth.ActionListUsers); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponseSlice(users), nil
}

func (s *userService) Delete(ctx context.Context, email string) error {
	if err := s.policy.Authorize(ctx, auth.ActionDeleteUser); err != nil {
		return err
	}

	deleted, err := s.store.DeleteUser(ctx, email)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.listings.Invalidate(ctx)
	s.logger.Info().Str("email", email).Msg("user removed")
	return nil
}
