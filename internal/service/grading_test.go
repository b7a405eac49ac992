package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/model"
)

func multiQuestion(correct []string, score float64) model.Question {
	return model.Question{
		ID:             uuid.New(),
		Content:        "pick all that apply",
		Type:           model.QuestionTypeMultiple,
		CorrectAnswers: correct,
		Score:          score,
	}
}

func TestGradeSetEquality(t *testing.T) {
	q := multiQuestion([]string{"A", "C"}, 2)

	cases := []struct {
		name     string
		selected []string
		correct  bool
	}{
		{"exact order", []string{"A", "C"}, true},
		{"reversed order", []string{"C", "A"}, true},
		{"duplicates collapse", []string{"A", "A", "C"}, true},
		{"missing key", []string{"A"}, false},
		{"extra key", []string{"A", "C", "D"}, false},
		{"wrong key same size", []string{"A", "B"}, false},
		{"empty selection", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			graded, total := Grade([]model.Question{q}, []model.SubmittedAnswer{
				{QuestionID: q.ID, SelectedKeys: tc.selected},
			})
			if len(graded) != 1 {
				t.Fatalf("expected 1 graded answer, got %d", len(graded))
			}
			if graded[0].IsCorrect != tc.correct {
				t.Errorf("IsCorrect = %v, want %v", graded[0].IsCorrect, tc.correct)
			}
			wantTotal := 0.0
			if tc.correct {
				wantTotal = q.Score
			}
			if total != wantTotal {
				t.Errorf("total = %v, want %v", total, wantTotal)
			}
		})
	}
}

func TestGradeTotalsAcrossQuestions(t *testing.T) {
	q1 := multiQuestion([]string{"A", "C"}, 1)
	q2 := multiQuestion([]string{"B"}, 2)
	questions := []model.Question{q1, q2}

	graded, total := Grade(questions, []model.SubmittedAnswer{
		{QuestionID: q1.ID, SelectedKeys: []string{"C", "A"}},
		{QuestionID: q2.ID, SelectedKeys: []string{"B"}},
	})
	if total != 3 {
		t.Errorf("both correct: total = %v, want 3", total)
	}
	for _, g := range graded {
		if !g.IsCorrect {
			t.Errorf("question %s graded incorrect", g.QuestionID)
		}
	}

	_, total = Grade(questions, []model.SubmittedAnswer{
		{QuestionID: q1.ID, SelectedKeys: []string{"A"}},
		{QuestionID: q2.ID, SelectedKeys: []string{"C"}},
	})
	if total != 0 {
		t.Errorf("both wrong: total = %v, want 0", total)
	}
}

func TestGradeDropsUnknownQuestions(t *testing.T) {
	q := multiQuestion([]string{"A"}, 1)

	graded, total := Grade([]model.Question{q}, []model.SubmittedAnswer{
		{QuestionID: uuid.New(), SelectedKeys: []string{"A"}},
		{QuestionID: q.ID, SelectedKeys: []string{"A"}},
	})
	if len(graded) != 1 {
		t.Fatalf("expected unknown question to be dropped, got %d graded answers", len(graded))
	}
	if graded[0].QuestionID != q.ID {
		t.Errorf("graded wrong question: %s", graded[0].QuestionID)
	}
	if total != 1 {
		t.Errorf("total = %v, want 1", total)
	}
}

func TestGradeUnansweredContributesNothing(t *testing.T) {
	q1 := multiQuestion([]string{"A"}, 1)
	q2 := multiQuestion([]string{"B"}, 1)

	graded, total := Grade([]model.Question{q1, q2}, []model.SubmittedAnswer{
		{QuestionID: q1.ID, SelectedKeys: []string{"A"}},
	})
	if len(graded) != 1 {
		t.Fatalf("expected 1 graded answer, got %d", len(graded))
	}
	if total != 1 {
		t.Errorf("total = %v, want 1", total)
	}
}
