package models

import "time"

// Submission represents a file uploaded by a student together with its grading state.
type Submission struct {
	ID           string     `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Student      string     `gorm:"size:255;index;not null" bson:"student" json:"student"`
	Title        string     `gorm:"size:255;not null" bson:"title" json:"title"`
	FileName     string     `gorm:"size:512;not null" bson:"fileName" json:"fileName"`
	OriginalName string     `gorm:"size:512" bson:"originalName" json:"originalName"`
	FilePath     string     `gorm:"size:512;not null" bson:"filePath" json:"filePath"`
	CreatedAt    time.Time  `gorm:"index" bson:"createdAt" json:"createdAt"`
	Score        *float64   `bson:"score" json:"score"`
	Feedback     *string    `gorm:"type:text" bson:"feedback" json:"feedback"`
	GradedAt     *time.Time `bson:"gradedAt,omitempty" json:"gradedAt,omitempty"`
}

// IsGraded reports whether the submission has been graded at least once.
func (s Submission) IsGraded() bool {
	return s.GradedAt != nil
}
