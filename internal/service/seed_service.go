package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/models"
	"github.com/noah-isme/gema-submit-api/internal/repository"
)

// AdminAccount describes the administrator that must exist after startup.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// SeedService creates the accounts the API cannot run without.
type SeedService interface {
	// EnsureAdmin inserts the administrator unless a user with the same email
	// and role exists. It reports whether a record was written.
	EnsureAdmin(ctx context.Context) (bool, error)
}

type seedService struct {
	store  repository.Store
	hasher CredentialHasher
	admin  AdminAccount
	logger zerolog.Logger
	now    func() time.Time
}

// NewSeedService constructs a seeding service.
func NewSeedService(store repository.Store, hasher CredentialHasher, admin AdminAccount, logger zerolog.Logger) SeedService {
	if strings.TrimSpace(admin.Name) == "" {
		admin.Name = "Admin"
	}
	return &seedService{
		store:  store,
		hasher: hasher,
		admin:  admin,
		logger: logger.With().Str("component", "seed_service").Logger(),
		now:    time.Now,
	}
}

func (s *seedService) EnsureAdmin(ctx context.Context) (bool, error) {
	_, err := s.store.FindUser(ctx, repository.UserFilter{Email: s.admin.Email, Role: models.RoleAdmin})
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	user, err := newUser(s.hasher, s.admin.Name, s.admin.Email, s.admin.Password, models.RoleAdmin, s.now())
	if err != nil {
		return false, err
	}

	if err := s.store.InsertUser(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.logger.Warn().Str("email", s.admin.Email).Msg("admin email is held by a non-admin account; seeding skipped")
			return false, nil
		}
		return false, err
	}

	s.logger.Info().Str("email", s.admin.Email).Msg("default admin seeded")
	return true, nil
}
