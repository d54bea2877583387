package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-eval-api/internal/repository"
)

type metricsExporter interface {
	Handler() http.Handler
}

type storeProbe interface {
	Ping(ctx context.Context) error
	Mode() repository.Mode
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics metricsExporter
	store   storeProbe
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics metricsExporter, store storeProbe) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, store: store}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports the active backing and whether it answers. A failing probe is
// informational: the bootstrap login keeps working without storage.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	body := gin.H{"status": "ready", "mode": h.store.Mode(), "healthy": true}
	if err := h.store.Ping(c.Request.Context()); err != nil {
		body["status"] = "degraded"
		body["healthy"] = false
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}
