package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/response"
	"github.com/quizforge/quizforge-backend/internal/service"
)

// ExamHandler handles the exam catalog endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/exams
// Lists active exams as summary rows, any authenticated role.
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.ListActive(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if exams == nil {
		exams = []model.ExamSummary{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}
