package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/scheduler"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

// StudyHandler exposes session assembly and review recording.
type StudyHandler struct {
	sessions *services.SessionService
	reviews  *services.ReviewService
}

func NewStudyHandler(sessions *services.SessionService, reviews *services.ReviewService) *StudyHandler {
	return &StudyHandler{
		sessions: sessions,
		reviews:  reviews,
	}
}

type startSessionRequest struct {
	Mode         string `json:"mode" binding:"required"`
	MaxDue       int    `json:"max_due"`
	MaxNew       int    `json:"max_new"`
	PracticeSize int    `json:"practice_size"`
	// Forced relaxes the caps for an explicitly requested extra session.
	Forced bool `json:"forced"`
}

type recordReviewRequest struct {
	CardID string `json:"card_id" binding:"required"`
	Rating int    `json:"rating" binding:"required"`
	Mode   string `json:"mode" binding:"required"`
}

func (h *StudyHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sessions", h.StartSession)
	router.POST("/reviews", h.RecordReview)
}

func (h *StudyHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mode := domain.SessionMode(req.Mode)
	if !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be normal, practice or cram"})
		return
	}

	var cards []*domain.Card
	var err error

	if req.Forced {
		cards, err = h.sessions.SelectForced(c.Request.Context())
	} else {
		caps := services.DefaultSessionCaps()
		if req.MaxDue > 0 {
			caps.MaxDue = req.MaxDue
		}
		if req.MaxNew > 0 {
			caps.MaxNew = req.MaxNew
		}
		if req.PracticeSize > 0 {
			caps.PracticeSize = req.PracticeSize
		}
		cards, err = h.sessions.Select(c.Request.Context(), mode, caps)
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mode":  mode,
		"count": len(cards),
		"cards": cards,
	})
}

func (h *StudyHandler) RecordReview(c *gin.Context) {
	var req recordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.reviews.RecordReview(
		c.Request.Context(),
		req.CardID,
		scheduler.Rating(req.Rating),
		domain.SessionMode(req.Mode),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating), errors.Is(err, services.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrCardNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		case errors.Is(err, domain.ErrStorage):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, state)
}
