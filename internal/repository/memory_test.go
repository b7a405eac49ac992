package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/model"
)

func doingAttempt(userID, examID uuid.UUID) *model.Attempt {
	now := time.Now()
	return &model.Attempt{
		ID:        uuid.New(),
		UserID:    userID,
		ExamID:    examID,
		StartedAt: now,
		ExpiredAt: now.Add(time.Hour),
		Status:    model.AttemptStatusDoing,
	}
}

func TestMemoryAttemptStoreCreateEnforcesSingleDoing(t *testing.T) {
	subs := NewMemorySubmissionStore()
	store := NewMemoryAttemptStore(subs)
	ctx := context.Background()

	userID, examID := uuid.New(), uuid.New()
	first := doingAttempt(userID, examID)
	if err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, doingAttempt(userID, examID)); !errors.Is(err, ErrDuplicateActive) {
		t.Errorf("second DOING create: err = %v, want ErrDuplicateActive", err)
	}

	// Same user, different exam is fine.
	if err := store.Create(ctx, doingAttempt(userID, uuid.New())); err != nil {
		t.Errorf("different exam: %v", err)
	}

	// Once the first is finalized the slot frees up.
	if err := store.Finalize(ctx, first.ID, &model.Submission{ID: uuid.New(), AttemptID: first.ID, UserID: userID, ExamID: examID}); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := store.Create(ctx, doingAttempt(userID, examID)); err != nil {
		t.Errorf("create after finalize: %v", err)
	}
}

func TestMemoryAttemptStoreTransitionsAreCAS(t *testing.T) {
	subs := NewMemorySubmissionStore()
	store := NewMemoryAttemptStore(subs)
	ctx := context.Background()

	a := doingAttempt(uuid.New(), uuid.New())
	if err := store.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkTimeout(ctx, a.ID); err != nil {
		t.Fatalf("MarkTimeout: %v", err)
	}

	// Every DOING-conditioned operation now fails.
	if err := store.MarkTimeout(ctx, a.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("second MarkTimeout: err = %v, want ErrConflict", err)
	}
	if err := store.ReplaceAnswers(ctx, a.ID, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("ReplaceAnswers on TIMEOUT: err = %v, want ErrConflict", err)
	}
	if err := store.Finalize(ctx, a.ID, &model.Submission{ID: uuid.New(), AttemptID: a.ID}); !errors.Is(err, ErrConflict) {
		t.Errorf("Finalize on TIMEOUT: err = %v, want ErrConflict", err)
	}
	if subs.Count() != 0 {
		t.Errorf("failed finalize still stored a submission")
	}
}

func TestMemoryAttemptStoreFinalizeStoresSubmission(t *testing.T) {
	subs := NewMemorySubmissionStore()
	store := NewMemoryAttemptStore(subs)
	ctx := context.Background()

	a := doingAttempt(uuid.New(), uuid.New())
	if err := store.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sub := &model.Submission{ID: uuid.New(), AttemptID: a.ID, UserID: a.UserID, ExamID: a.ExamID, TotalScore: 2}
	if err := store.Finalize(ctx, a.ID, sub); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.AttemptStatusSubmitted {
		t.Errorf("status = %s, want SUBMITTED", got.Status)
	}

	stored, err := subs.GetByID(ctx, sub.ID)
	if err != nil {
		t.Fatalf("submission GetByID: %v", err)
	}
	if stored.TotalScore != 2 {
		t.Errorf("TotalScore = %v, want 2", stored.TotalScore)
	}
}
