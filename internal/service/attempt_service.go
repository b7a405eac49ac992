package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/repository"
)

// AttemptService owns the attempt state machine: start, progress saves,
// submission, and lazy expiry. Expiry is only ever detected when an attempt
// is next touched — there is no background sweep, so a stale DOING row in
// storage is benign until someone looks at it again.
type AttemptService struct {
	examRepo    repository.ExamCatalog
	attemptRepo repository.AttemptStore
	selector    *QuestionSelector
	log         zerolog.Logger

	now func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	examRepo repository.ExamCatalog,
	attemptRepo repository.AttemptStore,
	selector *QuestionSelector,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		selector:    selector,
		log:         log.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

// StartExam creates a new attempt or resumes the caller's active one.
//
// A DOING attempt still inside its time window is resumed: same attempt id,
// same expired_at, questions resolved from the id list stored at creation.
// A DOING attempt past its window is flipped to TIMEOUT first and a fresh
// attempt is issued. The store's conditional insert resolves concurrent
// starts: the loser re-fetches and resumes the winner's attempt.
func (s *AttemptService) StartExam(ctx context.Context, userID, examID uuid.UUID) (*model.StartExamResponse, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrExamNotFound
	}

	existing, err := s.attemptRepo.GetActive(ctx, userID, examID)
	switch {
	case err == nil:
		if !existing.Expired(s.now()) {
			return s.resume(ctx, exam, existing)
		}
		// Lost the CAS means someone else already finalized it; either way
		// the attempt is no longer DOING and a new one can be created.
		if err := s.attemptRepo.MarkTimeout(ctx, existing.ID); err != nil && !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("mark timeout: %w", err)
		}
		s.log.Info().
			Str("attempt_id", existing.ID.String()).
			Str("user_id", userID.String()).
			Msg("Expired attempt timed out")
	case errors.Is(err, repository.ErrNotFound):
		// No active attempt, fall through to create one.
	default:
		return nil, fmt.Errorf("get active attempt: %w", err)
	}

	questions, err := s.selector.Assign(ctx, exam)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	now := s.now()
	attempt := &model.Attempt{
		ID:             uuid.New(),
		UserID:         userID,
		ExamID:         examID,
		QuestionIDs:    ids,
		StartedAt:      now,
		ExpiredAt:      now.Add(time.Duration(exam.DurationMinutes) * time.Minute),
		Status:         model.AttemptStatusDoing,
		CurrentAnswers: []model.AttemptAnswer{},
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			winner, ferr := s.attemptRepo.GetActive(ctx, userID, examID)
			if ferr != nil {
				return nil, fmt.Errorf("concurrent start detected, fetch failed: %w", ferr)
			}
			return s.resume(ctx, exam, winner)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("exam_id", examID.String()).
		Str("user_id", userID.String()).
		Int("questions", len(questions)).
		Msg("Attempt started")

	return buildStartResponse(exam, attempt, questions, false), nil
}

// resume re-displays an existing attempt from its stored question id list.
func (s *AttemptService) resume(ctx context.Context, exam *model.Exam, attempt *model.Attempt) (*model.StartExamResponse, error) {
	questions, err := s.selector.Resolve(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, err
	}
	return buildStartResponse(exam, attempt, questions, true), nil
}

// SaveProgress replaces the attempt's current answers wholesale. No merge,
// last write wins. Expiry is deliberately not checked here: an attempt past
// its window can still be saved until something else finalizes it.
func (s *AttemptService) SaveProgress(ctx context.Context, attemptID uuid.UUID, answers []model.AttemptAnswerRequest) error {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("get attempt: %w", err)
	}
	if attempt.Status != model.AttemptStatusDoing {
		return ErrInvalidAttemptState
	}

	current := make([]model.AttemptAnswer, len(answers))
	for i, a := range answers {
		current[i] = model.AttemptAnswer{
			QuestionID:      a.QuestionID,
			SelectedKeys:    a.SelectedKeys,
			MarkedForReview: a.MarkedForReview,
		}
	}

	if err := s.attemptRepo.ReplaceAnswers(ctx, attemptID, current); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrInvalidAttemptState
		}
		return fmt.Errorf("replace answers: %w", err)
	}
	return nil
}

// SubmitExam grades the submitted answers against the attempt's assigned
// question set and finalizes the attempt atomically with its submission.
// Submission past expired_at is accepted; the window is enforced on start,
// not on submit.
func (s *AttemptService) SubmitExam(ctx context.Context, userID, attemptID uuid.UUID, answers []model.SubmittedAnswer) (*model.Submission, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrNotAttemptOwner
	}
	if attempt.Status != model.AttemptStatusDoing {
		return nil, ErrInvalidAttemptState
	}

	questions, err := s.selector.Resolve(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, err
	}

	graded, total := Grade(questions, answers)

	now := s.now()
	sub := &model.Submission{
		ID:               uuid.New(),
		AttemptID:        attempt.ID,
		UserID:           userID,
		ExamID:           attempt.ExamID,
		Answers:          graded,
		TotalScore:       total,
		SubmittedAt:      now,
		TimeTakenSeconds: int(now.Sub(attempt.StartedAt).Seconds()),
	}

	if err := s.attemptRepo.Finalize(ctx, attempt.ID, sub); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrInvalidAttemptState
		}
		return nil, fmt.Errorf("finalize attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("submission_id", sub.ID.String()).
		Float64("total_score", total).
		Msg("Attempt submitted")

	return sub, nil
}

// GetOwned retrieves an attempt and verifies it belongs to the caller.
func (s *AttemptService) GetOwned(ctx context.Context, userID, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrNotAttemptOwner
	}
	return attempt, nil
}

func buildStartResponse(exam *model.Exam, attempt *model.Attempt, questions []model.Question, resumed bool) *model.StartExamResponse {
	views := make([]model.QuestionView, len(questions))
	for i := range questions {
		views[i] = questions[i].View()
	}

	answers := attempt.CurrentAnswers
	if answers == nil {
		answers = []model.AttemptAnswer{}
	}

	return &model.StartExamResponse{
		AttemptID:       attempt.ID,
		ExamID:          exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		StartedAt:       attempt.StartedAt,
		ExpiredAt:       attempt.ExpiredAt,
		Resumed:         resumed,
		Questions:       views,
		CurrentAnswers:  answers,
	}
}
