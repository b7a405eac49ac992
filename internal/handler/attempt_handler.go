package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge-backend/internal/middleware"
	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/response"
	"github.com/quizforge/quizforge-backend/internal/service"
	"github.com/quizforge/quizforge-backend/internal/validator"
)

// AttemptHandler handles the attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	resultService  *service.ResultService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, resultService *service.ResultService) *AttemptHandler {
	return &AttemptHandler{
		attemptService: attemptService,
		resultService:  resultService,
	}
}

// StartExam godoc
// POST /api/v1/exams/:exam_id/start
// Creates a new attempt or resumes the caller's active one. The payload never
// contains correct answers or explanations.
func (h *AttemptHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.StartExam(c.Request.Context(), claims.UserID, examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotAvailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SaveProgress godoc
// PUT /api/v1/attempt/:attempt_id/save
// Overwrites the attempt's current answers. 400 unless the attempt is DOING.
func (h *AttemptHandler) SaveProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SaveProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.attemptService.SaveProgress(c.Request.Context(), attemptID, req.Answers); err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		case errors.Is(err, service.ErrInvalidAttemptState):
			response.Fail(c, http.StatusBadRequest, response.ErrAttemptNotDoing)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// SubmitExam godoc
// POST /api/v1/attempt/:attempt_id/submit
// Grades and finalizes the attempt, returning the full result view.
func (h *AttemptHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.attemptService.SubmitExam(c.Request.Context(), claims.UserID, attemptID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrAttemptNotFound)
		case errors.Is(err, service.ErrNotAttemptOwner):
			response.Fail(c, http.StatusForbidden, response.ErrNotAttemptOwner)
		case errors.Is(err, service.ErrInvalidAttemptState):
			response.Fail(c, http.StatusBadRequest, response.ErrAttemptNotDoing)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	result, err := h.resultService.Project(c.Request.Context(), sub)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
