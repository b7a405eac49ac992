package model

import (
	"github.com/google/uuid"
)

// QuestionType distinguishes single-choice from multiple-choice questions.
type QuestionType string

const (
	QuestionTypeSingle   QuestionType = "SINGLE"
	QuestionTypeMultiple QuestionType = "MULTIPLE"
)

// AnswerOption is one selectable option of a question.
type AnswerOption struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

// Question represents a bank question with its answer key.
//
// ExamID and OrderNum are the legacy linkage fields: before manual exams
// carried an explicit question_ids list, questions were attached to a single
// exam and ordered by order_num.
type Question struct {
	ID             uuid.UUID      `json:"id"`
	Content        string         `json:"content"`
	Type           QuestionType   `json:"type"`
	Options        []AnswerOption `json:"options"`
	CorrectAnswers []string       `json:"correct_answers"`
	Explanation    string         `json:"explanation,omitempty"`
	Score          float64        `json:"score"`
	Category       string         `json:"category,omitempty"`
	Difficulty     string         `json:"difficulty,omitempty"`
	ExamID         *uuid.UUID     `json:"exam_id,omitempty"`
	OrderNum       int            `json:"order_num"`
}

// QuestionView is the student-facing projection of a question. It has no
// CorrectAnswers or Explanation field at all, so an in-progress attempt can
// never leak the answer key through serialization.
type QuestionView struct {
	ID      uuid.UUID      `json:"id"`
	Content string         `json:"content"`
	Type    QuestionType   `json:"type"`
	Options []AnswerOption `json:"options"`
	Score   float64        `json:"score"`
}

// View strips the answer key from a question.
func (q *Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Content: q.Content,
		Type:    q.Type,
		Options: q.Options,
		Score:   q.Score,
	}
}
