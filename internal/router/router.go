package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizforge/quizforge-backend/internal/config"
	"github.com/quizforge/quizforge-backend/internal/handler"
	"github.com/quizforge/quizforge-backend/internal/middleware"
	"github.com/quizforge/quizforge-backend/internal/response"
	"github.com/quizforge/quizforge-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam    *handler.ExamHandler
	Attempt *handler.AttemptHandler
	Result  *handler.ResultHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	identity *service.IdentityService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── API (JWT) ─────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUser(identity))
	{
		api.GET("/exams", handlers.Exam.ListExams)
		api.POST("/exams/:exam_id/start", handlers.Attempt.StartExam)

		api.PUT("/attempt/:attempt_id/save", handlers.Attempt.SaveProgress)
		api.POST("/attempt/:attempt_id/submit", handlers.Attempt.SubmitExam)

		api.GET("/result/:submission_id", handlers.Result.GetResult)
		api.GET("/history", handlers.Result.GetHistory)
	}

	// ─── WebSocket (JWT via ?token=) ───────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUser(identity))
	{
		ws.GET("/attempt/:attempt_id/clock", handlers.WS.AttemptClock)
	}

	return router
}
