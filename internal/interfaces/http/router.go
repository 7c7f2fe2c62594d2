// Package http exposes the console over REST.  Handlers are thin: they
// decode the request, delegate to the engine or the reminder service, and
// render the result.  No reconciliation or escalation logic lives here.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/colops/console/internal/config"
	"github.com/colops/console/internal/digest"
	"github.com/colops/console/internal/engine"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/internal/reminders"
)

// NewRouter assembles the gin engine with all console routes.
func NewRouter(
	cfg config.ServerConfig,
	eng *engine.Engine,
	rem *reminders.Service,
	dig *digest.Service,
	gatherer prometheus.Gatherer,
	logger logging.Logger,
) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger.Named("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	h := &handlers{engine: eng, reminders: rem, digest: dig}

	api := r.Group("/api")
	{
		api.GET("/status", h.status)
		api.GET("/pending", h.pending)
		api.POST("/operations/:id/confirm", h.confirm)
		api.POST("/operations/:id/cancel", h.cancel)
		api.POST("/process-images", h.processImages)
		api.POST("/mode", h.setMode)
		api.GET("/payments-log", h.paymentsLog)
		api.GET("/upload-history", h.uploadHistory)

		api.GET("/unpaid-invoices", h.unpaidInvoices)
		api.POST("/invoices/:row/reminder", h.toggleReminder)
		api.POST("/invoices/:row/reminder-pause", h.pauseReminder)
		api.POST("/invoices/:row/reminder-send", h.sendReminder)

		api.GET("/digest/schedule", h.digestSchedule)
		api.PUT("/digest/schedule", h.updateDigestSchedule)
		api.GET("/digest/preview", h.digestPreview)
		api.POST("/digest/send", h.sendDigest)
	}

	return r
}

// requestLogger records one line per request, warning on 4xx/5xx.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			logger.Warn("request failed", fields...)
		} else {
			logger.Info("request", fields...)
		}
	}
}
