package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/quizforge/quizforge-backend/internal/middleware"
	"github.com/quizforge/quizforge-backend/internal/model"
	"github.com/quizforge/quizforge-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ClockTick is one frame of the attempt clock stream.
type ClockTick struct {
	AttemptID        uuid.UUID           `json:"attempt_id"`
	Status           model.AttemptStatus `json:"status"`
	RemainingSeconds int                 `json:"remaining_seconds"`
}

// WSHandler streams a live countdown for an in-progress attempt.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptClock godoc
// WS /ws/v1/attempt/:attempt_id/clock
// Streams remaining seconds and current status once per second. The stream
// ends when the attempt leaves DOING or the clock reaches zero; status is
// re-read periodically so a submit on another connection closes the stream.
func (h *WSHandler) AttemptClock(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt ID"})
		return
	}

	attempt, err := h.attemptService.GetOwned(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no such attempt for this user"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("attempt_id", attemptID.String()).
		Str("user_id", claims.UserID.String()).
		Logger()
	wsLog.Debug().Msg("Clock stream opened")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for i := 0; ; i++ {
		// Refresh status every few ticks so a concurrent submit or timeout
		// is noticed without hitting the store every second.
		if i > 0 && i%5 == 0 {
			refreshed, err := h.attemptService.GetOwned(ctx, claims.UserID, attemptID)
			if err != nil {
				wsLog.Warn().Err(err).Msg("Clock refresh failed")
				return
			}
			attempt = refreshed
		}

		remaining := int(time.Until(attempt.ExpiredAt).Seconds())
		if remaining < 0 {
			remaining = 0
		}

		tick := ClockTick{
			AttemptID:        attempt.ID,
			Status:           attempt.Status,
			RemainingSeconds: remaining,
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(tick); err != nil {
			wsLog.Debug().Msg("Clock stream closed by client")
			return
		}

		if attempt.Status != model.AttemptStatusDoing || remaining == 0 {
			wsLog.Debug().Msg("Clock stream finished")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
