package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

// GormStore persists records in a relational database through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a store and ensures the tables exist.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Submission{}); err != nil {
		return nil, fmt.Errorf("migrate tables: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) FindUser(ctx context.Context, filter UserFilter) (models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return stripPasswords(users), nil
}

func (s *GormStore) InsertUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
}

func (s *GormStore) DeleteUser(ctx context.Context, email string) (bool, error) {
	result := s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.User{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) InsertSubmission(ctx context.Context, submission *models.Submission) error {
	return s.db.WithContext(ctx).Create(submission).Error
}

func (s *GormStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	submissions := make([]models.Submission, 0)
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *GormStore) ListSubmissionsByStudent(ctx context.Context, key string) ([]models.Submission, error) {
	names := s.db.WithContext(ctx).Model(&models.User{}).Select("name").Where("email = ?", key)

	submissions := make([]models.Submission, 0)
	err := s.db.WithContext(ctx).
		Where("student = ?", key).
		Or("student IN (?)", names).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *GormStore) FindSubmission(ctx context.Context, id string) (models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, ErrNotFound
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *GormStore) UpdateSubmission(ctx context.Context, id string, update SubmissionUpdate) (models.Submission, error) {
	var updated models.Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		update.apply(&updated)
		return tx.Save(&updated).Error
	})
	if err != nil {
		return models.Submission{}, err
	}
	return updated, nil
}

func (s *GormStore) DeleteSubmission(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Submission{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Store = (*GormStore)(nil)
