package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-submit-api/internal/auth"
	"github.com/noah-isme/gema-submit-api/internal/dto"
	"github.com/noah-isme/gema-submit-api/internal/models"
	"github.com/noah-isme/gema-submit-api/internal/observability"
	"github.com/noah-isme/gema-submit-api/internal/repository"
)

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	ListAll(ctx context.Context) ([]dto.SubmissionResponse, error)
	ListForStudent(ctx context.Context, key string) ([]dto.SubmissionResponse, error)
	Grade(ctx context.Context, id string, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionOptions carries the optional collaborators of the submission service.
type SubmissionOptions struct {
	Policy auth.Policy
	// Cache holds per-student listings. User services must share the same instance.
	Cache  *ListingCache
	Events EventPublisher
	// Sanitizer, when set, strips markup from titles and feedback before they are stored.
	Sanitizer *bluemonday.Policy
}

type submissionService struct {
	store     repository.Store
	uploads   UploadService
	validator *validator.Validate
	policy    auth.Policy
	cache     *ListingCache
	events    EventPublisher
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(store repository.Store, uploads UploadService, validate *validator.Validate, opts SubmissionOptions, logger zerolog.Logger) SubmissionService {
	policy := opts.Policy
	if policy == nil {
		policy = auth.TrustPolicy{}
	}
	events := opts.Events
	if events == nil {
		events = noopPublisher{}
	}
	return &submissionService{
		store:     store,
		uploads:   uploads,
		validator: validate,
		policy:    policy,
		cache:     opts.Cache,
		events:    events,
		sanitizer: opts.Sanitizer,
		logger:    logger.With().Str("component", "submission_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-submit-api/internal/service/submission"),
		now:       time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.policy.Authorize(ctx, auth.ActionCreateSubmission); err != nil {
		return dto.SubmissionResponse{}, err
	}
	payload.Title = s.sanitize(payload.Title)
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, ErrSubmissionFieldsRequired
	}
	if err := auth.AuthorizeOwner(ctx, payload.Student); err != nil {
		return dto.SubmissionResponse{}, err
	}
	if file == nil {
		return dto.SubmissionResponse{}, ErrFileRequired
	}

	stored, err := s.uploads.Store(ctx, file)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		ID:           uuid.NewString(),
		Student:      payload.Student,
		Title:        payload.Title,
		FileName:     stored.FileName,
		OriginalName: stored.OriginalName,
		FilePath:     stored.FilePath,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.InsertSubmission(ctx, &submission); err != nil {
		if discardErr := s.uploads.Discard(context.WithoutCancel(ctx), stored.FileName); discardErr != nil {
			s.logger.Error().Err(discardErr).Str("file_name", stored.FileName).Msg("failed to discard orphaned upload")
		}
		return dto.SubmissionResponse{}, fmt.Errorf("save submission: %w", err)
	}

	s.afterMutation(ctx, EventSubmissionCreated, submission)
	s.logger.Info().Str("submission_id", submission.ID).Str("student", submission.Student).Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListAll(ctx context.Context) ([]dto.SubmissionResponse, error) {
	if err := s.policy.Authorize(ctx, auth.ActionListSubmissions); err != nil {
		return nil, err
	}

	submissions, err := s.store.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListForStudent(ctx context.Context, key string) ([]dto.SubmissionResponse, error) {
	if err := s.policy.Authorize(ctx, auth.ActionListStudentSubmissions); err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwner(ctx, key); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	submissions, err := s.store.ListSubmissionsByStudent(ctx, key)
	if err != nil {
		return nil, err
	}
	response := dto.NewSubmissionResponseSlice(submissions)
	s.cache.Set(ctx, key, response)

	return response, nil
}

func (s *submissionService) Grade(ctx context.Context, id string, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.grade")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", id))

	if err := s.policy.Authorize(ctx, auth.ActionGradeSubmission); err != nil {
		span.SetStatus(codes.Error, "forbidden")
		return dto.SubmissionResponse{}, err
	}
	if payload.Score == nil || payload.Feedback == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, ErrGradeFieldsRequired
	}

	score, err := coerceScore(payload.Score)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}
	feedback, err := coerceFeedback(payload.Feedback)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}
	feedback = s.sanitize(feedback)

	gradedAt := s.now().UTC()
	updated, err := s.store.UpdateSubmission(ctx, id, repository.SubmissionUpdate{
		Score:    &score,
		Feedback: &feedback,
		GradedAt: &gradedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Float64("submission.score", score))
	span.SetStatus(codes.Ok, "graded")
	s.afterMutation(ctx, EventSubmissionGraded, updated)
	s.logger.Info().Str("submission_id", id).Float64("score", score).Msg("submission graded")

	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) Delete(ctx context.Context, id string) error {
	if err := s.policy.Authorize(ctx, auth.ActionDeleteSubmission); err != nil {
		return err
	}

	submission, err := s.store.FindSubmission(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if err := s.uploads.Discard(ctx, submission.FileName); err != nil {
		s.logger.Warn().Err(err).Str("file_name", submission.FileName).Msg("failed to remove submission file")
	}

	deleted, err := s.store.DeleteSubmission(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSubmissionNotFound
	}

	s.afterMutation(ctx, EventSubmissionDeleted, submission)
	s.logger.Info().Str("submission_id", id).Msg("submission deleted")
	return nil
}

// afterMutation invalidates cached listings, records metrics and publishes the event.
// Failures are logged; the mutation itself already succeeded.
func (s *submissionService) afterMutation(ctx context.Context, eventType string, submission models.Submission) {
	observability.SubmissionEvents().WithLabelValues(strings.TrimPrefix(eventType, "submission.")).Inc()
	s.cache.Invalidate(ctx)

	event := SubmissionEvent{
		Type:         eventType,
		SubmissionID: submission.ID,
		Student:      submission.Student,
		Title:        submission.Title,
		Score:        submission.Score,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish submission event")
	}
}

func (s *submissionService) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

// coerceScore accepts JSON numbers and numeric strings. NaN and infinities
// are rejected because no store can persist them as a score.
func coerceScore(value interface{}) (float64, error) {
	var score float64
	switch v := value.(type) {
	case float64:
		score = v
	case float32:
		score = float64(v)
	case int:
		score = float64(v)
	case int64:
		score = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, ErrInvalidScore
		}
		score = parsed
	default:
		return 0, ErrInvalidScore
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, ErrInvalidScore
	}
	return score, nil
}

// coerceFeedback renders scalars as text; objects and arrays are stored as JSON.
func coerceFeedback(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		encoded, err := sonic.MarshalString(v)
		if err != nil {
			return "", fmt.Errorf("encode feedback: %w", err)
		}
		return encoded, nil
	}
}
