package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt lifecycle states.
//
// Transitions: DOING → SUBMITTED (submit), DOING → TIMEOUT (lazy expiry).
// SUBMITTED and TIMEOUT are terminal. Attempts are never deleted.
type AttemptStatus string

const (
	AttemptStatusDoing     AttemptStatus = "DOING"
	AttemptStatusSubmitted AttemptStatus = "SUBMITTED"
	AttemptStatusTimeout   AttemptStatus = "TIMEOUT"
)

// AttemptAnswer is one in-progress answer stored on an attempt.
type AttemptAnswer struct {
	QuestionID      uuid.UUID `json:"question_id"`
	SelectedKeys    []string  `json:"selected_keys"`
	MarkedForReview bool      `json:"marked_for_review,omitempty"`
}

// Attempt is one user's exam-taking session.
//
// QuestionIDs is the question set assigned when the attempt was created.
// Resuming always resolves the displayed questions from this stored list, so a
// random exam shows the same questions across reconnects. ExpiredAt is fixed
// at creation and never moves.
type Attempt struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	ExamID         uuid.UUID       `json:"exam_id"`
	QuestionIDs    []uuid.UUID     `json:"question_ids"`
	StartedAt      time.Time       `json:"started_at"`
	ExpiredAt      time.Time       `json:"expired_at"`
	Status         AttemptStatus   `json:"status"`
	CurrentAnswers []AttemptAnswer `json:"current_answers"`
}

// Expired reports whether the attempt's time window has passed at the given
// instant. Status is not consulted; callers decide what an expired DOING
// attempt means for their operation.
func (a *Attempt) Expired(now time.Time) bool {
	return now.After(a.ExpiredAt)
}

// StartExamResponse is returned when an attempt is created or resumed.
type StartExamResponse struct {
	AttemptID       uuid.UUID       `json:"attempt_id"`
	ExamID          uuid.UUID       `json:"exam_id"`
	Title           string          `json:"title"`
	DurationMinutes int             `json:"duration_minutes"`
	StartedAt       time.Time       `json:"started_at"`
	ExpiredAt       time.Time       `json:"expired_at"`
	Resumed         bool            `json:"resumed"`
	Questions       []QuestionView  `json:"questions"`
	CurrentAnswers  []AttemptAnswer `json:"current_answers"`
}

// SaveProgressRequest overwrites an attempt's current answers wholesale.
type SaveProgressRequest struct {
	Answers []AttemptAnswerRequest `json:"answers" binding:"required,dive"`
}

// AttemptAnswerRequest is one answer in a save-progress payload.
type AttemptAnswerRequest struct {
	QuestionID      uuid.UUID `json:"question_id" binding:"required"`
	SelectedKeys    []string  `json:"selected_keys"`
	MarkedForReview bool      `json:"marked_for_review"`
}

// SubmitExamRequest finalizes an attempt for grading.
type SubmitExamRequest struct {
	Answers []SubmittedAnswer `json:"answers" binding:"required,dive"`
}

// SubmittedAnswer is one answer in a submit payload.
type SubmittedAnswer struct {
	QuestionID   uuid.UUID `json:"question_id" binding:"required"`
	SelectedKeys []string  `json:"selected_keys"`
}
