package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

type DeckHandler struct {
	decks       *services.DeckService
	suppression *services.SuppressionService
}

func NewDeckHandler(decks *services.DeckService, suppression *services.SuppressionService) *DeckHandler {
	return &DeckHandler{
		decks:       decks,
		suppression: suppression,
	}
}

type deckRequest struct {
	Name string `json:"name" binding:"required"`
}

type suppressRequest struct {
	// Mode is "permanent" or "temporary". Temporary requires Until.
	Mode  string     `json:"mode" binding:"required"`
	Until *time.Time `json:"until"`
}

func (h *DeckHandler) RegisterRoutes(router *gin.RouterGroup) {
	decks := router.Group("/decks")
	{
		decks.POST("", h.Create)
		decks.GET("", h.List)
		decks.GET("/:id", h.Get)
		decks.PUT("/:id", h.Rename)
		decks.DELETE("/:id", h.Delete)
		decks.PUT("/:id/suppression", h.Suppress)
		decks.DELETE("/:id/suppression", h.LiftSuppression)
	}
}

func (h *DeckHandler) Create(c *gin.Context) {
	var req deckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deck, err := h.decks.Create(c.Request.Context(), req.Name)
	if err != nil {
		handleDeckError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deck)
}

func (h *DeckHandler) List(c *gin.Context) {
	list, err := h.decks.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DeckHandler) Get(c *gin.Context) {
	deck, err := h.decks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleDeckError(c, err)
		return
	}
	c.JSON(http.StatusOK, deck)
}

func (h *DeckHandler) Rename(c *gin.Context) {
	var req deckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deck, err := h.decks.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		handleDeckError(c, err)
		return
	}

	c.JSON(http.StatusOK, deck)
}

func (h *DeckHandler) Delete(c *gin.Context) {
	if err := h.decks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleDeckError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DeckHandler) Suppress(c *gin.Context) {
	var req suppressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	ctx := c.Request.Context()

	var err error
	switch req.Mode {
	case "permanent":
		err = h.suppression.SuppressPermanently(ctx, id)
	case "temporary":
		if req.Until == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "temporary suppression requires an until timestamp"})
			return
		}
		err = h.suppression.SuppressUntil(ctx, id, *req.Until)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be permanent or temporary"})
		return
	}

	if err != nil {
		handleDeckError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

func (h *DeckHandler) LiftSuppression(c *gin.Context) {
	if err := h.suppression.Lift(c.Request.Context(), c.Param("id")); err != nil {
		handleDeckError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func handleDeckError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDeckNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
	case errors.Is(err, domain.ErrDeckNameEmpty),
		errors.Is(err, domain.ErrDeckNameTooLong),
		errors.Is(err, domain.ErrSuppressionWindowPast):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
