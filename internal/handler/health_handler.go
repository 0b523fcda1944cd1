package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumetailor/internal/domain"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	formats   []domain.Format
	generator bool
}

// NewHealthHandler creates a new HealthHandler. formats lists the document
// formats the engine can process.
func NewHealthHandler(formats []domain.Format, generatorConfigured bool) *HealthHandler {
	return &HealthHandler{formats: formats, generator: generatorConfigured}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if len(h.formats) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no document codecs registered"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "formats": h.formats, "generator": h.generator})
}
