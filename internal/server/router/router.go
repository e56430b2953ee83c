package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/factoryboard/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.DashboardHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api/factory")
	{
		api.GET("/production", handler.Production)
		api.GET("/defects", handler.Defects)
		api.GET("/quality", handler.Quality)
		api.GET("/maintenance", handler.Maintenance)
		api.GET("/metrics", handler.KeyMetrics)
		api.GET("/overview", handler.Overview)
		api.GET("/snapshots", handler.Snapshots)
		api.GET("/template", handler.Template)
		api.POST("/upload", handler.Upload)
		api.POST("/sync", handler.Sync)
		api.POST("/digest", handler.SendDigest)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
