package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlight/recall-sync-engine/internal/core/domain"
	"github.com/quizlight/recall-sync-engine/internal/core/services"
)

type CardHandler struct {
	cards   *services.CardService
	reviews *services.ReviewService
}

func NewCardHandler(cards *services.CardService, reviews *services.ReviewService) *CardHandler {
	return &CardHandler{
		cards:   cards,
		reviews: reviews,
	}
}

type createCardRequest struct {
	DeckID string `json:"deck_id" binding:"required"`
	Prompt string `json:"prompt" binding:"required"`
	Answer string `json:"answer" binding:"required"`
}

type editCardRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Answer string `json:"answer" binding:"required"`
}

func (h *CardHandler) RegisterRoutes(router *gin.RouterGroup) {
	cards := router.Group("/cards")
	{
		cards.POST("", h.Create)
		cards.GET("/:id", h.Get)
		cards.PUT("/:id", h.Edit)
		cards.DELETE("/:id", h.Delete)
		cards.GET("/:id/history", h.History)
	}

	router.GET("/decks/:id/cards", h.ListByDeck)
}

func (h *CardHandler) Create(c *gin.Context) {
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cards.Create(c.Request.Context(), req.DeckID, req.Prompt, req.Answer)
	if err != nil {
		handleCardError(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) Get(c *gin.Context) {
	card, err := h.cards.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) Edit(c *gin.Context) {
	var req editCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.cards.EditContent(c.Request.Context(), c.Param("id"), req.Prompt, req.Answer)
	if err != nil {
		handleCardError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

func (h *CardHandler) Delete(c *gin.Context) {
	if err := h.cards.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleCardError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CardHandler) History(c *gin.Context) {
	history, err := h.reviews.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *CardHandler) ListByDeck(c *gin.Context) {
	cards, err := h.cards.ListByDeckID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCardError(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func handleCardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
	case errors.Is(err, domain.ErrDeckNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
	case errors.Is(err, domain.ErrCardPromptEmpty),
		errors.Is(err, domain.ErrCardAnswerEmpty),
		errors.Is(err, domain.ErrCardPromptLong),
		errors.Is(err, domain.ErrCardAnswerLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
