package web

import (
	"net/http"

	"github.com/dontdude/goscribe/internal/domain"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gateway HTTP surface: /healthz, /stats and /api/ws.
func NewRouter(health func() domain.HealthStatus, stats func() any, hub *Hub, limiter *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), cors())

	router.GET("/healthz", func(c *gin.Context) {
		st := health()
		code := http.StatusOK
		if st != domain.HealthServing {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": st.String()})
	})
	router.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"gateway":  stats(),
			"watchers": hub.Watchers(),
		})
	})
	router.GET("/api/ws", limiter.Middleware(), hub.ServeWS)

	return router
}

// cors allows browser clients on other origins.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
