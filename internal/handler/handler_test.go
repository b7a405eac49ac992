package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-backend/internal/config"
	"github.com/quizforge/quizforge-backend/internal/handler"
	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/repository"
	"github.com/quizforge/quizforge-backend/internal/router"
	"github.com/quizforge/quizforge-backend/internal/service"
	"github.com/quizforge/quizforge-backend/internal/validator"
)

// testEnv spins up the full router over in-memory stores, so these tests
// exercise the real middleware, validation, and error mapping paths.
type testEnv struct {
	router    http.Handler
	identity  *service.IdentityService
	exams     *repository.MemoryExamCatalog
	bank      *repository.MemoryQuestionBank
	exam      model.Exam
	questions []model.Question
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.Setup()

	cfg := &config.Config{
		GinMode:   gin.TestMode,
		JWTSecret: "handler-test-secret",
		JWTExpiry: time.Hour,
	}

	env := &testEnv{
		identity: service.NewIdentityService(cfg),
		exams:    repository.NewMemoryExamCatalog(),
		bank:     repository.NewMemoryQuestionBank(),
	}

	subs := repository.NewMemorySubmissionStore()
	attempts := repository.NewMemoryAttemptStore(subs)

	for i := 0; i < 2; i++ {
		q := model.Question{
			ID:      uuid.New(),
			Content: fmt.Sprintf("question %d", i+1),
			Type:    model.QuestionTypeSingle,
			Options: []model.AnswerOption{
				{Key: "A", Content: "right"},
				{Key: "B", Content: "wrong"},
			},
			CorrectAnswers: []string{"A"},
			Explanation:    "A is right",
			Score:          1,
		}
		env.bank.Put(q)
		env.questions = append(env.questions, q)
	}

	env.exam = model.Exam{
		ID:              uuid.New(),
		Title:           "Handler Test Exam",
		DurationMinutes: 30,
		TotalScore:      2,
		IsActive:        true,
		QuestionIDs:     []uuid.UUID{env.questions[0].ID, env.questions[1].ID},
	}
	env.exams.Put(env.exam)

	selector := service.NewQuestionSelector(env.bank)
	examService := service.NewExamService(env.exams, nil, 0, zerolog.Nop())
	attemptService := service.NewAttemptService(env.exams, attempts, selector, zerolog.Nop())
	resultService := service.NewResultService(env.exams, attempts, subs, selector, zerolog.Nop())

	handlers := &router.Handlers{
		Exam:    handler.NewExamHandler(examService),
		Attempt: handler.NewAttemptHandler(attemptService, resultService),
		Result:  handler.NewResultHandler(resultService),
		WS:      handler.NewWSHandler(attemptService, zerolog.Nop(), nil),
	}

	env.router = router.SetupRouter(env.identity, handlers, cfg)
	return env
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := e.identity.GenerateToken(userID, service.RoleStudent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v (body: %s)", err, w.Body.String())
	}
}

func TestEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/exams"},
		{http.MethodPost, "/api/v1/exams/" + env.exam.ID.String() + "/start"},
		{http.MethodPut, "/api/v1/attempt/" + uuid.New().String() + "/save"},
		{http.MethodPost, "/api/v1/attempt/" + uuid.New().String() + "/submit"},
		{http.MethodGet, "/api/v1/result/" + uuid.New().String()},
		{http.MethodGet, "/api/v1/history"},
	}
	for _, p := range paths {
		w := env.do(t, p.method, p.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestListExams(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	w := env.do(t, http.MethodGet, "/api/v1/exams", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var data struct {
		Exams []model.ExamSummary `json:"exams"`
	}
	decodeData(t, w, &data)
	if len(data.Exams) != 1 {
		t.Fatalf("got %d exams, want 1", len(data.Exams))
	}
	if data.Exams[0].Title != env.exam.Title {
		t.Errorf("title = %q, want %q", data.Exams[0].Title, env.exam.Title)
	}
}

func TestStartExamHidesAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/exams/"+env.exam.ID.String()+"/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	body := w.Body.String()
	if bytes.Contains([]byte(body), []byte("correct_answers")) {
		t.Error("start payload leaks correct_answers")
	}
	if bytes.Contains([]byte(body), []byte("explanation")) {
		t.Error("start payload leaks explanation")
	}

	var start model.StartExamResponse
	decodeData(t, w, &start)
	if len(start.Questions) != 2 {
		t.Errorf("got %d questions, want 2", len(start.Questions))
	}
	if start.AttemptID == uuid.Nil {
		t.Error("missing attempt id")
	}
}

func TestStartExamUnknownExam(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	w := env.do(t, http.MethodPost, "/api/v1/exams/"+uuid.New().String()+"/start", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestSaveSubmitResultFlow(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()
	token := env.token(t, userID)

	var start model.StartExamResponse
	w := env.do(t, http.MethodPost, "/api/v1/exams/"+env.exam.ID.String()+"/start", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: status %d (body: %s)", w.Code, w.Body.String())
	}
	decodeData(t, w, &start)

	save := gin.H{"answers": []gin.H{
		{"question_id": env.questions[0].ID, "selected_keys": []string{"A"}, "marked_for_review": true},
	}}
	w = env.do(t, http.MethodPut, "/api/v1/attempt/"+start.AttemptID.String()+"/save", token, save)
	if w.Code != http.StatusOK {
		t.Fatalf("save: status %d (body: %s)", w.Code, w.Body.String())
	}

	submit := gin.H{"answers": []gin.H{
		{"question_id": env.questions[0].ID, "selected_keys": []string{"A"}},
		{"question_id": env.questions[1].ID, "selected_keys": []string{"B"}},
	}}
	w = env.do(t, http.MethodPost, "/api/v1/attempt/"+start.AttemptID.String()+"/submit", token, submit)
	if w.Code != http.StatusOK {
		t.Fatalf("submit: status %d (body: %s)", w.Code, w.Body.String())
	}

	var result model.ExamResult
	decodeData(t, w, &result)
	if result.TotalScore != 1 {
		t.Errorf("TotalScore = %v, want 1", result.TotalScore)
	}
	if len(result.Questions) != 2 {
		t.Errorf("got %d result rows, want 2", len(result.Questions))
	}

	// Double submit is a state error.
	w = env.do(t, http.MethodPost, "/api/v1/attempt/"+start.AttemptID.String()+"/submit", token, submit)
	if w.Code != http.StatusBadRequest {
		t.Errorf("double submit: status %d, want 400", w.Code)
	}

	// Result view is retrievable by submission id.
	w = env.do(t, http.MethodGet, "/api/v1/result/"+result.SubmissionID.String(), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("result: status %d (body: %s)", w.Code, w.Body.String())
	}

	// And shows up in history.
	w = env.do(t, http.MethodGet, "/api/v1/history", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history: status %d (body: %s)", w.Code, w.Body.String())
	}
	var hist struct {
		History []model.HistoryEntry `json:"history"`
	}
	decodeData(t, w, &hist)
	if len(hist.History) != 1 {
		t.Errorf("got %d history entries, want 1", len(hist.History))
	}
}

func TestSubmitForeignAttemptForbidden(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.token(t, uuid.New())
	otherToken := env.token(t, uuid.New())

	var start model.StartExamResponse
	w := env.do(t, http.MethodPost, "/api/v1/exams/"+env.exam.ID.String()+"/start", ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: status %d", w.Code)
	}
	decodeData(t, w, &start)

	w = env.do(t, http.MethodPost, "/api/v1/attempt/"+start.AttemptID.String()+"/submit", otherToken, gin.H{"answers": []gin.H{}})
	if w.Code != http.StatusForbidden {
		t.Errorf("status %d, want 403", w.Code)
	}
}

func TestSaveProgressValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, uuid.New())

	// Malformed attempt id.
	w := env.do(t, http.MethodPut, "/api/v1/attempt/not-a-uuid/save", token, gin.H{"answers": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status %d, want 400", w.Code)
	}

	// Missing answers field.
	w = env.do(t, http.MethodPut, "/api/v1/attempt/"+uuid.New().String()+"/save", token, gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing answers: status %d, want 400", w.Code)
	}

	// Unknown attempt.
	w = env.do(t, http.MethodPut, "/api/v1/attempt/"+uuid.New().String()+"/save", token, gin.H{"answers": []gin.H{}})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown attempt: status %d, want 404", w.Code)
	}
}
