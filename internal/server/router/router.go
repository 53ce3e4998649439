package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.HerdHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/animals/:id/status", handler.AnimalStatus)
	r.GET("/animals/:id/summary", handler.AnimalSummary)
	r.POST("/animals", handler.RegisterAnimal)

	r.GET("/herd/statuses", handler.HerdStatuses)
	r.GET("/herd/kpi", handler.HerdKpi)
	r.GET("/herd/kpi/trends", handler.KpiTrends)

	r.GET("/alerts", handler.ListAlerts)
	r.PATCH("/alerts/:id/status", handler.UpdateAlertStatus)

	r.POST("/events", handler.CreateEvent)
	r.POST("/import/sheet", handler.ImportSheet)

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
