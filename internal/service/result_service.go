package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/repository"
)

// ResultService assembles graded result views and submission history.
type ResultService struct {
	examRepo    repository.ExamCatalog
	attemptRepo repository.AttemptStore
	subRepo     repository.SubmissionStore
	selector    *QuestionSelector
	log         zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	examRepo repository.ExamCatalog,
	attemptRepo repository.AttemptStore,
	subRepo repository.SubmissionStore,
	selector *QuestionSelector,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		subRepo:     subRepo,
		selector:    selector,
		log:         log.With().Str("component", "result_service").Logger(),
	}
}

// GetResult fetches a submission and builds its full result view.
func (s *ResultService) GetResult(ctx context.Context, submissionID uuid.UUID) (*model.ExamResult, error) {
	sub, err := s.subRepo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s.Project(ctx, sub)
}

// Project builds the result view for a submission: one row per question in
// the attempt's assigned set, whether or not it was answered. The view always
// includes correct answers and explanations — it only exists after
// finalization, so nothing is leaked early.
func (s *ResultService) Project(ctx context.Context, sub *model.Submission) (*model.ExamResult, error) {
	exam, err := s.examRepo.GetByID(ctx, sub.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	attempt, err := s.attemptRepo.GetByID(ctx, sub.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	questions, err := s.selector.Resolve(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, err
	}

	answerByQuestion := make(map[uuid.UUID]*model.GradedAnswer, len(sub.Answers))
	for i := range sub.Answers {
		answerByQuestion[sub.Answers[i].QuestionID] = &sub.Answers[i]
	}

	results := make([]model.QuestionResult, 0, len(questions))
	for _, q := range questions {
		row := model.QuestionResult{
			ID:             q.ID,
			Content:        q.Content,
			Type:           q.Type,
			Options:        q.Options,
			CorrectAnswers: q.CorrectAnswers,
			Explanation:    q.Explanation,
			SelectedKeys:   []string{},
		}
		if ans, ok := answerByQuestion[q.ID]; ok {
			row.SelectedKeys = ans.SelectedKeys
			row.Answered = true
			row.IsCorrect = ans.IsCorrect
			row.Score = ans.Score
		}
		results = append(results, row)
	}

	return &model.ExamResult{
		SubmissionID:     sub.ID,
		ExamID:           exam.ID,
		ExamTitle:        exam.Title,
		TotalScore:       sub.TotalScore,
		MaxScore:         exam.TotalScore,
		TimeTakenSeconds: sub.TimeTakenSeconds,
		SubmittedAt:      sub.SubmittedAt,
		Questions:        results,
	}, nil
}

// History lists the caller's submissions as summary rows, newest first.
// Submissions whose exam has since disappeared are skipped.
func (s *ResultService) History(ctx context.Context, userID uuid.UUID) ([]model.HistoryEntry, error) {
	subs, err := s.subRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(subs))
	for _, sub := range subs {
		exam, err := s.examRepo.GetByID(ctx, sub.ExamID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get exam: %w", err)
		}
		entries = append(entries, model.HistoryEntry{
			SubmissionID:     sub.ID,
			ExamID:           sub.ExamID,
			ExamTitle:        exam.Title,
			TotalScore:       sub.TotalScore,
			MaxScore:         exam.TotalScore,
			TimeTakenSeconds: sub.TimeTakenSeconds,
			SubmittedAt:      sub.SubmittedAt,
		})
	}
	return entries, nil
}
