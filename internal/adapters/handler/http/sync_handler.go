package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlight/recall-sync-engine/internal/adapters/session"
	"github.com/quizlight/recall-sync-engine/internal/core/queue"
)

// SyncHandler exposes queue inspection and the session lifecycle. Signing
// out clears the op log: unsynced work belonging to the departing account
// must not replay into the next one.
type SyncHandler struct {
	queue   *queue.Queue
	session *session.JWTSession
}

func NewSyncHandler(q *queue.Queue, s *session.JWTSession) *SyncHandler {
	return &SyncHandler{
		queue:   q,
		session: s,
	}
}

type setTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/sync")
	{
		sync.GET("/status", h.Status)
		sync.POST("/retry", h.RetryFailed)
	}

	auth := router.Group("/auth")
	{
		auth.PUT("/token", h.SetToken)
		auth.DELETE("/token", h.SignOut)
	}
}

func (h *SyncHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": h.session.IsAuthenticated(),
		"pending":       h.queue.PendingCount(),
		"failed":        h.queue.ListFailed(),
	})
}

func (h *SyncHandler) RetryFailed(c *gin.Context) {
	revived := h.queue.RetryFailed(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"revived": revived})
}

func (h *SyncHandler) SetToken(c *gin.Context) {
	var req setTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.session.SetToken(req.Token)
	c.Status(http.StatusNoContent)
}

func (h *SyncHandler) SignOut(c *gin.Context) {
	h.session.ClearToken()

	if err := h.queue.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear sync queue"})
		return
	}

	c.Status(http.StatusNoContent)
}
