package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

type snapshot struct {
	Users       []models.User       `json:"users"`
	Submissions []models.Submission `json:"submissions"`
}

// FileStore keeps every record in a single JSON document. Each operation
// re-reads the whole file; mutations rewrite it in full.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore opens the snapshot at path, creating an empty one when missing.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := store.write(snapshot{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat data file: %w", err)
	}

	return store, nil
}

func (s *FileStore) read() (snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return snapshot{}, fmt.Errorf("read data file: %w", err)
	}

	var db snapshot
	if err := sonic.ConfigStd.Unmarshal(raw, &db); err != nil {
		return snapshot{}, fmt.Errorf("decode data file: %w", err)
	}
	return db, nil
}

func (s *FileStore) write(db snapshot) error {
	if db.Users == nil {
		db.Users = []models.User{}
	}
	if db.Submissions == nil {
		db.Submissions = []models.Submission{}
	}

	raw, err := sonic.ConfigStd.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode data file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// view loads a snapshot for a read-only operation.
func (s *FileStore) view(ctx context.Context) (snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// update runs a read-modify-write cycle. fn reports whether the snapshot changed.
func (s *FileStore) update(ctx context.Context, fn func(db *snapshot) (bool, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.read()
	if err != nil {
		return err
	}
	changed, err := fn(&db)
	if err != nil || !changed {
		return err
	}
	return s.write(db)
}

func (s *FileStore) FindUser(ctx context.Context, filter UserFilter) (models.User, error) {
	db, err := s.view(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, user := range db.Users {
		if filter.matches(user) {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *FileStore) ListUsers(ctx context.Context) ([]models.User, error) {
	db, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	return stripPasswords(db.Users), nil
}

func (s *FileStore) InsertUser(ctx context.Context, user *models.User) error {
	return s.update(ctx, func(db *snapshot) (bool, error) {
		for _, existing := range db.Users {
			if existing.Email == user.Email {
				return false, ErrConflict
			}
		}
		db.Users = append(db.Users, *user)
		return true, nil
	})
}

func (s *FileStore) DeleteUser(ctx context.Context, email string) (bool, error) {
	deleted := false
	err := s.update(ctx, func(db *snapshot) (bool, error) {
		kept := db.Users[:0]
		for _, user := range db.Users {
			if user.Email == email {
				deleted = true
				continue
			}
			kept = append(kept, user)
		}
		db.Users = kept
		return deleted, nil
	})
	return deleted, err
}

func (s *FileStore) InsertSubmission(ctx context.Context, submission *models.Submission) error {
	return s.update(ctx, func(db *snapshot) (bool, error) {
		db.Submissions = append(db.Submissions, *submission)
		return true, nil
	})
}

func (s *FileStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	db, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	if db.Submissions == nil {
		return []models.Submission{}, nil
	}
	return db.Submissions, nil
}

func (s *FileStore) ListSubmissionsByStudent(ctx context.Context, key string) ([]models.Submission, error) {
	db, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	name := ""
	hasName := false
	for _, user := range db.Users {
		if user.Email == key {
			name, hasName = user.Name, true
			break
		}
	}

	result := make([]models.Submission, 0)
	for _, submission := range db.Submissions {
		if submission.Student == key || (hasName && submission.Student == name) {
			result = append(result, submission)
		}
	}
	return result, nil
}

func (s *FileStore) FindSubmission(ctx context.Context, id string) (models.Submission, error) {
	db, err := s.view(ctx)
	if err != nil {
		return models.Submission{}, err
	}
	for _, submission := range db.Submissions {
		if submission.ID == id {
			return submission, nil
		}
	}
	return models.Submission{}, ErrNotFound
}

func (s *FileStore) UpdateSubmission(ctx context.Context, id string, update SubmissionUpdate) (models.Submission, error) {
	var updated models.Submission
	err := s.update(ctx, func(db *snapshot) (bool, error) {
		for i := range db.Submissions {
			if db.Submissions[i].ID == id {
				update.apply(&db.Submissions[i])
				updated = db.Submissions[i]
				return true, nil
			}
		}
		return false, ErrNotFound
	})
	if err != nil {
		return models.Submission{}, err
	}
	return updated, nil
}

func (s *FileStore) DeleteSubmission(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.update(ctx, func(db *snapshot) (bool, error) {
		kept := db.Submissions[:0]
		for _, submission := range db.Submissions {
			if submission.ID == id {
				deleted = true
				continue
			}
			kept = append(kept, submission)
		}
		db.Submissions = kept
		return deleted, nil
	})
	return deleted, err
}

// Close is a no-op; every mutation is already flushed.
func (s *FileStore) Close(context.Context) error {
	return nil
}

var _ Store = (*FileStore)(nil)
