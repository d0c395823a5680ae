package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

type storeFactory func(t *testing.T) Store

func newTestFileStore(t *testing.T) Store {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "db.json"))
	require.NoError(t, err)
	return store
}

func newTestGormStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	store, err := NewGormStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"file":   newTestFileStore,
		"sqlite": newTestGormStore,
	}
}

func testUser(name, email string, role models.Role, created time.Time) *models.User {
	return &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  "secret",
		Role:      role,
		CreatedAt: created,
	}
}

func testSubmission(student, title string, created time.Time) *models.Submission {
	fileName := fmt.Sprintf("%d-%s.pdf", created.UnixMilli(), title)
	return &models.Submission{
		ID:           uuid.NewString(),
		Student:      student,
		Title:        title,
		FileName:     fileName,
		OriginalName: title + ".pdf",
		FilePath:     "/uploads/" + fileName,
		CreatedAt:    created,
	}
}

func TestStoreUsers(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

			admin := testUser("Admin", "admin@x.com", models.RoleAdmin, base)
			require.NoError(t, store.InsertUser(ctx, admin))
			require.NoError(t, store.InsertUser(ctx, testUser("Ann", "ann@x.com", models.RoleStudent, base.Add(time.Minute))))

			err := store.InsertUser(ctx, testUser("Other", "ann@x.com", models.RoleInstructor, base.Add(2*time.Minute)))
			require.ErrorIs(t, err, ErrConflict)

			found, err := store.FindUser(ctx, UserFilter{Email: "admin@x.com", Role: models.RoleAdmin})
			require.NoError(t, err)
			require.Equal(t, admin.ID, found.ID)
			require.Equal(t, "secret", found.Password)

			_, err = store.FindUser(ctx, UserFilter{Email: "admin@x.com", Role: models.RoleStudent})
			require.ErrorIs(t, err, ErrNotFound)
			_, err = store.FindUser(ctx, UserFilter{Email: "ADMIN@x.com"})
			require.ErrorIs(t, err, ErrNotFound)

			users, err := store.ListUsers(ctx)
			require.NoError(t, err)
			require.Len(t, users, 2)
			require.Equal(t, "admin@x.com", users[0].Email)
			for _, user := range users {
				require.Empty(t, user.Password)
			}

			deleted, err := store.DeleteUser(ctx, "ann@x.com")
			require.NoError(t, err)
			require.True(t, deleted)

			deleted, err = store.DeleteUser(ctx, "ann@x.com")
			require.NoError(t, err)
			require.False(t, deleted)

			require.NoError(t, store.InsertUser(ctx, testUser("Ann again", "ann@x.com", models.RoleStudent, base.Add(3*time.Minute))))
		})
	}
}

func TestStoreSubmissions(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t)
			base := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

			require.NoError(t, store.InsertUser(ctx, testUser("Ann Lee", "ann@x.com", models.RoleStudent, base)))

			byName := testSubmission("Ann Lee", "essay", base.Add(time.Minute))
			byEmail := testSubmission("ann@x.com", "lab", base.Add(2*time.Minute))
			other := testSubmission("Bob", "quiz", base.Add(3*time.Minute))
			for _, s := range []*models.Submission{byName, byEmail, other} {
				require.NoError(t, store.InsertSubmission(ctx, s))
			}

			all, err := store.ListSubmissions(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			require.Equal(t, []string{byName.ID, byEmail.ID, other.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
			require.Nil(t, all[0].Score)
			require.Nil(t, all[0].Feedback)
			require.Nil(t, all[0].GradedAt)

			mine, err := store.ListSubmissionsByStudent(ctx, "ann@x.com")
			require.NoError(t, err)
			require.Len(t, mine, 2)

			byNameOnly, err := store.ListSubmissionsByStudent(ctx, "Ann Lee")
			require.NoError(t, err)
			require.Len(t, byNameOnly, 1)
			require.Equal(t, byName.ID, byNameOnly[0].ID)

			none, err := store.ListSubmissionsByStudent(ctx, "nobody@x.com")
			require.NoError(t, err)
			require.NotNil(t, none)
			require.Empty(t, none)

			score := 87.5
			feedback := "good"
			gradedAt := base.Add(time.Hour)
			updated, err := store.UpdateSubmission(ctx, byEmail.ID, SubmissionUpdate{Score: &score, Feedback: &feedback, GradedAt: &gradedAt})
			require.NoError(t, err)
			require.NotNil(t, updated.Score)
			require.InDelta(t, 87.5, *updated.Score, 0.0001)
			require.Equal(t, "good", *updated.Feedback)
			require.True(t, updated.IsGraded())
			require.Equal(t, byEmail.FileName, updated.FileName)

			reloaded, err := store.FindSubmission(ctx, byEmail.ID)
			require.NoError(t, err)
			require.InDelta(t, 87.5, *reloaded.Score, 0.0001)
			require.True(t, reloaded.GradedAt.Equal(gradedAt))

			_, err = store.UpdateSubmission(ctx, "missing", SubmissionUpdate{Score: &score})
			require.ErrorIs(t, err, ErrNotFound)
			_, err = store.FindSubmission(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			deleted, err := store.DeleteSubmission(ctx, other.ID)
			require.NoError(t, err)
			require.True(t, deleted)
			deleted, err = store.DeleteSubmission(ctx, other.ID)
			require.NoError(t, err)
			require.False(t, deleted)

			all, err = store.ListSubmissions(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "db.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.InsertUser(ctx, testUser("Ann", "ann@x.com", models.RoleStudent, time.Now().UTC())))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	user, err := second.FindUser(ctx, UserFilter{Email: "ann@x.com"})
	require.NoError(t, err)
	require.Equal(t, "Ann", user.Name)
}

func TestFileStoreSerialisesConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestFileStore(t)

	const writers = 20
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			errs <- store.InsertSubmission(ctx, testSubmission("ann@x.com", fmt.Sprintf("work-%d", i), time.Now().UTC()))
		}(i)
	}
	for i := 0; i < writers; i++ {
		require.NoError(t, <-errs)
	}

	all, err := store.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, all, writers)
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	store := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.ListUsers(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
