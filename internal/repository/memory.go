package repository

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/model"
)

// In-memory store implementations mirroring the PostgreSQL contract semantics
// (conditional create, compare-and-swap transitions, atomic finalize). The
// core services are tested against these instead of a live database.

// MemoryExamCatalog is an in-memory ExamCatalog.
type MemoryExamCatalog struct {
	mu    sync.RWMutex
	exams map[uuid.UUID]model.Exam
}

// NewMemoryExamCatalog creates an empty in-memory exam catalog.
func NewMemoryExamCatalog() *MemoryExamCatalog {
	return &MemoryExamCatalog{exams: make(map[uuid.UUID]model.Exam)}
}

// Put inserts or replaces an exam definition.
func (c *MemoryExamCatalog) Put(e model.Exam) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exams[e.ID] = e
}

func (c *MemoryExamCatalog) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.exams[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (c *MemoryExamCatalog) ListActive(_ context.Context) ([]model.Exam, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []model.Exam
	for _, e := range c.exams {
		if e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MemoryQuestionBank is an in-memory QuestionBank.
type MemoryQuestionBank struct {
	mu        sync.RWMutex
	questions map[uuid.UUID]model.Question
}

// NewMemoryQuestionBank creates an empty in-memory question bank.
func NewMemoryQuestionBank() *MemoryQuestionBank {
	return &MemoryQuestionBank{questions: make(map[uuid.UUID]model.Question)}
}

// Put inserts or replaces a question.
func (b *MemoryQuestionBank) Put(q model.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.questions[q.ID] = q
}

// GetByIDs returns existing questions for the given ids. Order is arbitrary
// map order, matching the SQL implementation's lack of ordering guarantees.
func (b *MemoryQuestionBank) GetByIDs(_ context.Context, ids []uuid.UUID) ([]model.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Question
	for id, q := range b.questions {
		if want[id] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (b *MemoryQuestionBank) ListByExamLink(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []model.Question
	for _, q := range b.questions {
		if q.ExamID != nil && *q.ExamID == examID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNum < out[j].OrderNum })
	return out, nil
}

func (b *MemoryQuestionBank) SampleByCategories(_ context.Context, n int, categories []string) ([]model.Question, error) {
	if n <= 0 {
		return nil, nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	catSet := make(map[string]bool, len(categories))
	for _, c := range categories {
		catSet[c] = true
	}

	var pool []model.Question
	for _, q := range b.questions {
		if len(catSet) == 0 || catSet[q.Category] {
			pool = append(pool, q)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool, nil
}

// MemoryAttemptStore is an in-memory AttemptStore sharing a submission map
// with MemorySubmissionStore so Finalize stays atomic across both.
type MemoryAttemptStore struct {
	mu          sync.Mutex
	attempts    map[uuid.UUID]model.Attempt
	submissions *MemorySubmissionStore
}

// NewMemoryAttemptStore creates an in-memory attempt store that finalizes
// into the given submission store.
func NewMemoryAttemptStore(subs *MemorySubmissionStore) *MemoryAttemptStore {
	return &MemoryAttemptStore{
		attempts:    make(map[uuid.UUID]model.Attempt),
		submissions: subs,
	}
}

func (s *MemoryAttemptStore) Create(_ context.Context, a *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.attempts {
		if existing.UserID == a.UserID && existing.ExamID == a.ExamID && existing.Status == model.AttemptStatusDoing {
			return ErrDuplicateActive
		}
	}
	s.attempts[a.ID] = *a
	return nil
}

func (s *MemoryAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryAttemptStore) GetActive(_ context.Context, userID, examID uuid.UUID) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.UserID == userID && a.ExamID == examID && a.Status == model.AttemptStatusDoing {
			found := a
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAttemptStore) ReplaceAnswers(_ context.Context, id uuid.UUID, answers []model.AttemptAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.Status != model.AttemptStatusDoing {
		return ErrConflict
	}
	a.CurrentAnswers = answers
	s.attempts[id] = a
	return nil
}

func (s *MemoryAttemptStore) MarkTimeout(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.Status != model.AttemptStatusDoing {
		return ErrConflict
	}
	a.Status = model.AttemptStatusTimeout
	s.attempts[id] = a
	return nil
}

func (s *MemoryAttemptStore) Finalize(_ context.Context, id uuid.UUID, sub *model.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.Status != model.AttemptStatusDoing {
		return ErrConflict
	}
	a.Status = model.AttemptStatusSubmitted
	s.attempts[id] = a
	s.submissions.put(*sub)
	return nil
}

// MemorySubmissionStore is an in-memory SubmissionStore.
type MemorySubmissionStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]model.Submission
}

// NewMemorySubmissionStore creates an empty in-memory submission store.
func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{subs: make(map[uuid.UUID]model.Submission)}
}

func (s *MemorySubmissionStore) put(sub model.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.ID] = sub
}

// Count reports how many submissions exist. Test helper.
func (s *MemorySubmissionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *MemorySubmissionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sub, nil
}

func (s *MemorySubmissionStore) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Submission
	for _, sub := range s.subs {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}
