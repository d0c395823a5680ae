package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/dto"
	"github.com/noah-isme/gema-submit-api/internal/models"
	"github.com/noah-isme/gema-submit-api/internal/repository"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user models.User) (string, error)
}

// AuthService handles login and self-service registration.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
}

type authService struct {
	store     repository.Store
	hasher    CredentialHasher
	tokens    TokenIssuer
	validator *validator.Validate
	listings  *ListingCache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService. tokens may be nil, in which case
// logins return no token. listings may be nil.
func NewAuthService(store repository.Store, hasher CredentialHasher, tokens TokenIssuer, validate *validator.Validate, listings *ListingCache, logger zerolog.Logger) AuthService {
	return &authService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		validator: validate,
		listings:  listings,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, ErrLoginFieldsRequired
	}

	user, err := s.store.FindUser(ctx, repository.UserFilter{
		Email: payload.Email,
		Role:  models.Role(payload.Role),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}
	if !s.hasher.Verify(user.Password, payload.Password) {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	response := dto.LoginResponse{User: dto.NewUserSummary(user)}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user)
		if err != nil {
			return dto.LoginResponse{}, err
		}
		response.Token = token
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return response, nil
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, ErrRegisterFieldsRequired
	}

	user, err := newUser(s.hasher, payload.Name, payload.Email, payload.Password, models.RoleStudent, s.now())
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
	s.logger.Info().Str("user_id", user.ID).Msg("student registered")
	return dto.NewUserSummary(user), nil
}

func newUser(hasher CredentialHasher, name, email, password string, role models.Role, now time.Time) (models.User, error) {
	stored, err := hasher.Hash(password)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  stored,
		Role:      role,
		CreatedAt: now.UTC(),
	}, nil
}
