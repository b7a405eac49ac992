package service

import (
	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/model"
)

// Grade compares submitted answers against the canonical question set and
// returns the graded answers plus the total score.
//
// A submitted answer whose question id is not in the canonical set is dropped
// without error or score. An answer is correct when its selected keys, as a
// set, exactly equal the question's correct answers as a set: order does not
// matter, duplicates collapse, and any extra or missing key makes it wrong.
// Correct answers earn the question's score, incorrect ones zero; unanswered
// questions simply contribute nothing.
func Grade(questions []model.Question, answers []model.SubmittedAnswer) ([]model.GradedAnswer, float64) {
	byID := make(map[uuid.UUID]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	graded := make([]model.GradedAnswer, 0, len(answers))
	var total float64

	for _, ans := range answers {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}

		correct := answerSetsEqual(ans.SelectedKeys, q.CorrectAnswers)
		score := 0.0
		if correct {
			score = q.Score
		}
		total += score

		graded = append(graded, model.GradedAnswer{
			QuestionID:   q.ID,
			SelectedKeys: ans.SelectedKeys,
			IsCorrect:    correct,
			Score:        score,
		})
	}

	return graded, total
}

// answerSetsEqual reports whether two key lists are equal as sets.
func answerSetsEqual(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, k := range a {
		as[k] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, k := range b {
		bs[k] = struct{}{}
	}

	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}
