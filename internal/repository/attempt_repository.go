package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizforge/quizforge-backend/internal/model"
)

// AttemptRepository is the PostgreSQL-backed AttemptStore.
//
// The one-DOING-attempt-per-(user, exam) invariant is enforced by a partial
// unique index; Create relies on ON CONFLICT DO NOTHING so two concurrent
// starts cannot both insert. Status transitions are compare-and-swap updates
// conditioned on the row still being DOING.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `id, user_id, exam_id, question_ids, started_at, expired_at, status, current_answers`

// Create inserts a new DOING attempt. Returns ErrDuplicateActive when another
// DOING attempt for the same (user, exam) already exists.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (id, user_id, exam_id, question_ids, started_at, expired_at, status, current_answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id, exam_id) WHERE status = 'DOING' DO NOTHING`,
		a.ID, a.UserID, a.ExamID, a.QuestionIDs, a.StartedAt, a.ExpiredAt, a.Status, a.CurrentAnswers,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateActive
	}
	return nil
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.ExamID, &a.QuestionIDs, &a.StartedAt, &a.ExpiredAt, &a.Status, &a.CurrentAnswers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetActive retrieves the DOING attempt for a (user, exam) pair, if any.
func (r *AttemptRepository) GetActive(ctx context.Context, userID, examID uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE user_id = $1 AND exam_id = $2 AND status = 'DOING'`, userID, examID,
	).Scan(&a.ID, &a.UserID, &a.ExamID, &a.QuestionIDs, &a.StartedAt, &a.ExpiredAt, &a.Status, &a.CurrentAnswers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// ReplaceAnswers overwrites current_answers while the attempt is still DOING.
func (r *AttemptRepository) ReplaceAnswers(ctx context.Context, id uuid.UUID, answers []model.AttemptAnswer) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts SET current_answers = $1 WHERE id = $2 AND status = 'DOING'`,
		answers, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// MarkTimeout transitions a DOING attempt to TIMEOUT.
func (r *AttemptRepository) MarkTimeout(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts SET status = 'TIMEOUT' WHERE id = $1 AND status = 'DOING'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// Finalize transitions a DOING attempt to SUBMITTED and inserts its
// submission in a single transaction. A concurrent finalize loses the
// compare-and-swap and gets ErrConflict; the submissions.attempt_id unique
// constraint backs the same invariant at the schema level.
func (r *AttemptRepository) Finalize(ctx context.Context, id uuid.UUID, sub *model.Submission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE attempts SET status = 'SUBMITTED' WHERE id = $1 AND status = 'DOING'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO submissions (id, attempt_id, user_id, exam_id, answers, total_score, submitted_at, time_taken_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sub.ID, sub.AttemptID, sub.UserID, sub.ExamID, sub.Answers, sub.TotalScore, sub.SubmittedAt, sub.TimeTakenSeconds,
	); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	return tx.Commit(ctx)
}
