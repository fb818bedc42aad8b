// internal/http/router.go
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/observability"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/application"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/assessment"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/interview"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Applications *application.Service
	Assessments  *assessment.Service
	Interviews   *interview.Service
}

// NewRouter builds the gin engine with all routes registered under
// /api/v1. Health and metrics endpoints sit outside the versioned
// group and need no actor headers. debug widens error responses to
// include internal details.
func NewRouter(svcs Services, log logger.Logger, obs *observability.Observability, debug bool) *gin.Engine {
	exposeInternalDetails = debug
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(Recovery(log), RequestLogger(log), Timing(obs))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(RequireActor())

	NewApplicationHandler(api, svcs.Applications, log)
	NewAssessmentHandler(api, svcs.Assessments, log)
	NewInterviewHandler(api, svcs.Interviews, log)

	return router
}
