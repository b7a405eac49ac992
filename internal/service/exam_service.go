package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-backend/internal/config"
	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/repository"
)

// ExamService serves the exam catalog, with a short-TTL Redis cache in front
// of the active exam list. The list is read on every lobby load, so it is the
// one hot read worth caching; a cache miss or Redis outage falls through to
// the database.
type ExamService struct {
	examRepo repository.ExamCatalog
	rdb      *redis.Client
	ttl      time.Duration
	log      zerolog.Logger
}

// NewExamService creates a new ExamService. rdb may be nil to disable caching.
func NewExamService(examRepo repository.ExamCatalog, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		rdb:      rdb,
		ttl:      ttl,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// ListActive returns the active exam list as summary rows.
func (s *ExamService) ListActive(ctx context.Context) ([]model.ExamSummary, error) {
	key := config.CacheKey.ActiveExamsKey()

	if s.rdb != nil {
		data, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached []model.ExamSummary
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return cached, nil
			}
			s.log.Warn().Str("key", key).Msg("Discarding malformed cache entry")
		case !errors.Is(err, redis.Nil):
			s.log.Warn().Err(err).Msg("Exam cache read failed, falling back to database")
		}
	}

	exams, err := s.examRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ExamSummary, len(exams))
	for i := range exams {
		summaries[i] = exams[i].Summary()
	}

	if s.rdb != nil {
		if raw, err := json.Marshal(summaries); err == nil {
			if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				s.log.Warn().Err(err).Msg("Exam cache write failed")
			}
		}
	}

	return summaries, nil
}
