package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents an exam definition.
//
// Question assignment works in one of two modes. Manual exams (IsRandom=false)
// carry an ordered QuestionIDs list, or fall back to questions linked via the
// legacy exam_id column. Random exams (IsRandom=true) sample QuestionCount
// questions from the bank, filtered by Categories.
type Exam struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	DurationMinutes int         `json:"duration_minutes"`
	TotalScore      float64     `json:"total_score"`
	IsActive        bool        `json:"is_active"`
	IsRandom        bool        `json:"is_random"`
	QuestionCount   int         `json:"question_count"`
	QuestionIDs     []uuid.UUID `json:"question_ids,omitempty"`
	Categories      []string    `json:"categories,omitempty"`
	CreatedBy       string      `json:"created_by,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ExamSummary is the exam list row shown before starting an attempt.
type ExamSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalScore      float64   `json:"total_score"`
	QuestionCount   int       `json:"question_count"`
}

// Summary projects an exam into its list row.
func (e *Exam) Summary() ExamSummary {
	return ExamSummary{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		DurationMinutes: e.DurationMinutes,
		TotalScore:      e.TotalScore,
		QuestionCount:   e.QuestionCount,
	}
}
