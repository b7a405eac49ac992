package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/model"
)

// Store errors. Implementations translate their driver errors into these so
// the service layer never depends on pgx error identity.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateActive indicates a DOING attempt already exists for the
	// same (user, exam). Raised by the conditional insert in AttemptStore.Create.
	ErrDuplicateActive = errors.New("repository: active attempt already exists")
	// ErrConflict indicates a compare-and-swap update matched no row because
	// the attempt left the DOING state concurrently.
	ErrConflict = errors.New("repository: attempt is no longer in progress")
)

// ExamCatalog looks up exam definitions.
type ExamCatalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	ListActive(ctx context.Context) ([]model.Exam, error)
}

// QuestionBank looks up and samples bank questions.
//
// GetByIDs returns matches in no particular order; callers that care about
// ordering re-order against their input list. SampleByCategories returns all
// matches when the filtered pool is smaller than n, never an error.
type QuestionBank interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error)
	ListByExamLink(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
	SampleByCategories(ctx context.Context, n int, categories []string) ([]model.Question, error)
}

// AttemptStore persists exam attempts.
//
// Create is an insert-if-absent: at most one DOING attempt may exist per
// (user, exam), enforced at the store so concurrent starts cannot race into
// two active attempts. ReplaceAnswers and MarkTimeout are compare-and-swap
// updates conditioned on status=DOING. Finalize atomically transitions the
// attempt to SUBMITTED and creates its submission in one transaction, so a
// submission never exists without a terminal attempt or vice versa.
type AttemptStore interface {
	Create(ctx context.Context, a *model.Attempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetActive(ctx context.Context, userID, examID uuid.UUID) (*model.Attempt, error)
	ReplaceAnswers(ctx context.Context, id uuid.UUID, answers []model.AttemptAnswer) error
	MarkTimeout(ctx context.Context, id uuid.UUID) error
	Finalize(ctx context.Context, id uuid.UUID, sub *model.Submission) error
}

// SubmissionStore reads back graded submissions. Writes happen only through
// AttemptStore.Finalize; submissions are immutable afterwards.
type SubmissionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Submission, error)
}
