package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizforge/quizforge-backend/internal/model"
)

// QuestionRepository is the PostgreSQL-backed QuestionBank.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, content, type, options, correct_answers, explanation,
	 score, category, difficulty, exam_id, order_num`

// GetByIDs retrieves questions by id. Missing ids are simply absent from the
// result; row order is not significant.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListByExamLink retrieves questions attached via the legacy exam_id column,
// ordered ascending by order_num.
func (r *QuestionRepository) ListByExamLink(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE exam_id = $1
		 ORDER BY order_num ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// SampleByCategories draws up to n distinct questions uniformly at random.
// An empty category list means no filter. A pool smaller than n yields every
// match rather than an error.
func (r *QuestionRepository) SampleByCategories(ctx context.Context, n int, categories []string) ([]model.Question, error) {
	if n <= 0 {
		return nil, nil
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	args := []any{}
	if len(categories) > 0 {
		query += ` WHERE category = ANY($1)`
		args = append(args, categories)
	}
	query += fmt.Sprintf(` ORDER BY random() LIMIT $%d`, len(args)+1)
	args = append(args, n)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Content, &q.Type, &q.Options, &q.CorrectAnswers, &q.Explanation,
			&q.Score, &q.Category, &q.Difficulty, &q.ExamID, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
