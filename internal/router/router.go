package router

import (
	"github.com/gin-gonic/gin"

	"resumetailor/internal/handler"
	"resumetailor/internal/middleware"
)

// multipartOverhead is allowed on top of the file size limit for form
// fields and part headers.
const multipartOverhead = 1 << 20

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	docH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
	maxFileSize int64,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	if maxFileSize > 0 {
		v1.Use(middleware.BodyLimit(maxFileSize + multipartOverhead))
	}

	// Section extraction
	v1.POST("/sections", docH.Sections)
	v1.POST("/sections/export", docH.ExportSections)

	// Rewriting
	v1.POST("/rewrite", docH.Rewrite)
	v1.POST("/tailor", docH.Tailor)

	return r
}
