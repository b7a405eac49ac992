package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/config"
	"github.com/quizforge/quizforge-backend/internal/database"
	"github.com/quizforge/quizforge-backend/internal/logger"
	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/service"
)

// Fixed IDs keep the seed idempotent: rerunning only fills in what is missing.
var (
	demoUserID     = uuid.MustParse("1e9f0d7a-0000-4000-8000-000000000001")
	manualExamID   = uuid.MustParse("2a1b3c4d-0000-4000-8000-000000000001")
	randomExamID   = uuid.MustParse("2a1b3c4d-0000-4000-8000-000000000002")
	manualQuestion = []uuid.UUID{
		uuid.MustParse("3f0e1d2c-0000-4000-8000-000000000001"),
		uuid.MustParse("3f0e1d2c-0000-4000-8000-000000000002"),
		uuid.MustParse("3f0e1d2c-0000-4000-8000-000000000003"),
	}
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Demo Exams ===")

	questions := demoQuestions()
	inserted := 0
	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode options")
		}
		tag, err := pool.Exec(ctx, `
			INSERT INTO questions (id, content, type, options, correct_answers, explanation, score, category, difficulty, exam_id, order_num)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
			q.ID, q.Content, q.Type, opts, q.CorrectAnswers, q.Explanation,
			q.Score, q.Category, q.Difficulty, q.ExamID, q.OrderNum,
		)
		if err != nil {
			log.Fatal().Err(err).Str("question_id", q.ID.String()).Msg("Failed to insert question")
		}
		inserted += int(tag.RowsAffected())
	}
	fmt.Printf("Questions: %d inserted, %d already present\n", inserted, len(questions)-inserted)

	for _, e := range demoExams() {
		tag, err := pool.Exec(ctx, `
			INSERT INTO exams (id, title, description, duration_minutes, total_score, is_active, is_random, question_count, question_ids, categories, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Title, e.Description, e.DurationMinutes, e.TotalScore,
			e.IsActive, e.IsRandom, e.QuestionCount, e.QuestionIDs, e.Categories, e.CreatedBy,
		)
		if err != nil {
			log.Fatal().Err(err).Str("exam_id", e.ID.String()).Msg("Failed to insert exam")
		}
		if tag.RowsAffected() > 0 {
			fmt.Printf("Created exam %q (%s)\n", e.Title, e.ID)
		} else {
			fmt.Printf("Exam %q already present\n", e.Title)
		}
	}

	identity := service.NewIdentityService(cfg)
	token, err := identity.GenerateToken(demoUserID, service.RoleStudent)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate demo token")
	}

	fmt.Println("\nSeed completed!")
	fmt.Printf("Demo user ID: %s\n", demoUserID)
	fmt.Printf("Demo token:   %s\n", token)
}

func demoExams() []model.Exam {
	return []model.Exam{
		{
			ID:              manualExamID,
			Title:           "Go Fundamentals",
			Description:     "Three curated questions on Go basics.",
			DurationMinutes: 15,
			TotalScore:      3,
			IsActive:        true,
			IsRandom:        false,
			QuestionIDs:     manualQuestion,
			Categories:      []string{},
			CreatedBy:       "seed",
		},
		{
			ID:              randomExamID,
			Title:           "Mixed Practice",
			Description:     "Two random questions drawn from the general pool.",
			DurationMinutes: 10,
			TotalScore:      2,
			IsActive:        true,
			IsRandom:        true,
			QuestionCount:   2,
			QuestionIDs:     []uuid.UUID{},
			Categories:      []string{"general"},
			CreatedBy:       "seed",
		},
	}
}

func demoQuestions() []model.Question {
	abcd := func(a, b, c, d string) []model.AnswerOption {
		return []model.AnswerOption{
			{Key: "A", Content: a},
			{Key: "B", Content: b},
			{Key: "C", Content: c},
			{Key: "D", Content: d},
		}
	}

	pool := []model.Question{
		{
			ID:             manualQuestion[0],
			Content:        "Which keyword declares a new variable with inferred type?",
			Type:           model.QuestionTypeSingle,
			Options:        abcd("var", "let", "def", "dim"),
			CorrectAnswers: []string{"A"},
			Explanation:    "var declares a variable; := is shorthand inside functions.",
			Score:          1,
			Category:       "general",
		},
		{
			ID:             manualQuestion[1],
			Content:        "Which of the following are built-in Go types?",
			Type:           model.QuestionTypeMultiple,
			Options:        abcd("rune", "decimal", "complex128", "char"),
			CorrectAnswers: []string{"A", "C"},
			Score:          1,
			Category:       "general",
		},
		{
			ID:             manualQuestion[2],
			Content:        "What does a nil map lookup return?",
			Type:           model.QuestionTypeSingle,
			Options:        abcd("a panic", "the zero value", "an error", "undefined"),
			CorrectAnswers: []string{"B"},
			Explanation:    "Reading a nil map yields the zero value; only writes panic.",
			Score:          1,
			Category:       "general",
		},
	}

	// Extra pool entries so the random exam has something to sample.
	extras := []string{
		"Which function starts a new goroutine?",
		"Which builtin grows a slice?",
		"Which package provides context cancellation?",
	}
	answers := [][]string{{"B"}, {"A"}, {"C"}}
	options := [][4]string{
		{"run", "go", "spawn", "fork"},
		{"append", "grow", "push", "extend"},
		{"sync", "time", "context", "runtime"},
	}
	for i, content := range extras {
		pool = append(pool, model.Question{
			ID:             uuid.MustParse(fmt.Sprintf("3f0e1d2c-0000-4000-8000-00000000001%d", i)),
			Content:        content,
			Type:           model.QuestionTypeSingle,
			Options:        abcd(options[i][0], options[i][1], options[i][2], options[i][3]),
			CorrectAnswers: answers[i],
			Score:          1,
			Category:       "general",
		})
	}

	return pool
}
