package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/repository"
)

// QuestionSelector resolves the ordered question set assigned to an attempt.
type QuestionSelector struct {
	bank repository.QuestionBank
}

// NewQuestionSelector creates a new QuestionSelector.
func NewQuestionSelector(bank repository.QuestionBank) *QuestionSelector {
	return &QuestionSelector{bank: bank}
}

// Assign resolves the question set for a brand-new attempt.
//
// Manual exams resolve their explicit question_ids list in that exact order;
// with an empty list the legacy exam-link fallback applies, ordered by
// order_num. Random exams sample question_count questions from the
// category-filtered pool; a pool smaller than question_count yields every
// match. Each Assign call samples fresh, so random assignment is not
// idempotent across attempts.
func (s *QuestionSelector) Assign(ctx context.Context, exam *model.Exam) ([]model.Question, error) {
	if exam.IsRandom {
		questions, err := s.bank.SampleByCategories(ctx, exam.QuestionCount, exam.Categories)
		if err != nil {
			return nil, fmt.Errorf("sample questions: %w", err)
		}
		return questions, nil
	}

	if len(exam.QuestionIDs) > 0 {
		return s.Resolve(ctx, exam.QuestionIDs)
	}

	questions, err := s.bank.ListByExamLink(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list linked questions: %w", err)
	}
	return questions, nil
}

// Resolve fetches questions by id and restores the exact input order. Ids
// that no longer resolve are dropped silently — no placeholder, no error.
// Used both for manual assignment and for re-displaying the question set an
// existing attempt stored at creation.
func (s *QuestionSelector) Resolve(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	fetched, err := s.bank.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	byID := make(map[uuid.UUID]model.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}
