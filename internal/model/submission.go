package model

import (
	"time"

	"github.com/google/uuid"
)

// GradedAnswer is one graded answer stored on a submission.
type GradedAnswer struct {
	QuestionID   uuid.UUID `json:"question_id"`
	SelectedKeys []string  `json:"selected_keys"`
	IsCorrect    bool      `json:"is_correct"`
	Score        float64   `json:"score"`
}

// Submission is the immutable graded record produced when an attempt is
// finalized. Exactly one submission exists per attempt; the attempt_id unique
// constraint enforces it.
type Submission struct {
	ID               uuid.UUID      `json:"id"`
	AttemptID        uuid.UUID      `json:"attempt_id"`
	UserID           uuid.UUID      `json:"user_id"`
	ExamID           uuid.UUID      `json:"exam_id"`
	Answers          []GradedAnswer `json:"answers"`
	TotalScore       float64        `json:"total_score"`
	SubmittedAt      time.Time      `json:"submitted_at"`
	TimeTakenSeconds int            `json:"time_taken_seconds"`
}

// QuestionResult is one row of the post-submission result view. Unlike
// QuestionView it includes the answer key and explanation.
type QuestionResult struct {
	ID             uuid.UUID      `json:"id"`
	Content        string         `json:"content"`
	Type           QuestionType   `json:"type"`
	Options        []AnswerOption `json:"options"`
	CorrectAnswers []string       `json:"correct_answers"`
	Explanation    string         `json:"explanation,omitempty"`
	SelectedKeys   []string       `json:"selected_keys"`
	Answered       bool           `json:"answered"`
	IsCorrect      bool           `json:"is_correct"`
	Score          float64        `json:"score"`
}

// ExamResult is the full graded result view for one submission.
type ExamResult struct {
	SubmissionID     uuid.UUID        `json:"submission_id"`
	ExamID           uuid.UUID        `json:"exam_id"`
	ExamTitle        string           `json:"exam_title"`
	TotalScore       float64          `json:"total_score"`
	MaxScore         float64          `json:"max_score"`
	TimeTakenSeconds int              `json:"time_taken_seconds"`
	SubmittedAt      time.Time        `json:"submitted_at"`
	Questions        []QuestionResult `json:"questions"`
}

// HistoryEntry is one row of a user's submission history (summary only).
type HistoryEntry struct {
	SubmissionID     uuid.UUID `json:"submission_id"`
	ExamID           uuid.UUID `json:"exam_id"`
	ExamTitle        string    `json:"exam_title"`
	TotalScore       float64   `json:"total_score"`
	MaxScore         float64   `json:"max_score"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	SubmittedAt      time.Time `json:"submitted_at"`
}
