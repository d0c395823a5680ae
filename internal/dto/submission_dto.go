package dto

import (
	"time"

	"github.com/noah-isme/gema-submit-api/internal/models"
)

// SubmissionCreateRequest describes the text fields of the multipart upload.
type SubmissionCreateRequest struct {
	Student string `form:"student" validate:"required"`
	Title   string `form:"title" validate:"required"`
}

// GradeSubmissionRequest carries the grading payload. Both fields accept any
// JSON scalar; score must be numeric or a numeric string.
type GradeSubmissionRequest struct {
	Score    interface{} `json:"score"`
	Feedback interface{} `json:"feedback"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           string     `json:"id"`
	Student      string     `json:"student"`
	Title        string     `json:"title"`
	FileName     string     `json:"fileName"`
	OriginalName string     `json:"originalName"`
	FilePath     string     `json:"filePath"`
	CreatedAt    time.Time  `json:"createdAt"`
	Score        *float64   `json:"score"`
	Feedback     *string    `json:"feedback"`
	GradedAt     *time.Time `json:"gradedAt,omitempty"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:           model.ID,
		Student:      model.Student,
		Title:        model.Title,
		FileName:     model.FileName,
		OriginalName: model.OriginalName,
		FilePath:     model.FilePath,
		CreatedAt:    model.CreatedAt,
		Score:        model.Score,
		Feedback:     model.Feedback,
		GradedAt:     model.GradedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of submissions preserving order.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	result := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		result = append(result, NewSubmissionResponse(item))
	}
	return result
}
