package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP engine with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	r.GET("/digests", handler.ListDigests)
	r.GET("/digests/:name", handler.GetDigest)

	r.GET("/api/items", handler.APIListItems)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "AI News",
			"version":     handler.version,
			"description": "Daily AI news aggregation from Reddit, YouTube, TechCrunch, and Medium",
			"endpoints": map[string]string{
				"health":  "/health",
				"stats":   "/stats",
				"digests": "/digests",
				"digest":  "/digests/<name>",
				"items":   "/api/items?source=<source>&days=<n>",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
