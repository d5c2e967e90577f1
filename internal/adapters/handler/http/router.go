package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type RouterDependencies struct {
	DeckHandler  *DeckHandler
	CardHandler  *CardHandler
	StudyHandler *StudyHandler
	SyncHandler  *SyncHandler
	DB           *sqlx.DB
	StartTime    time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "connected"
		statusCode := 200
		if err := deps.DB.Ping(); err != nil {
			dbStatus = "unreachable"
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		deps.DeckHandler.RegisterRoutes(apiV1)
		deps.CardHandler.RegisterRoutes(apiV1)
		deps.StudyHandler.RegisterRoutes(apiV1)
		deps.SyncHandler.RegisterRoutes(apiV1)
	}

	return router
}
