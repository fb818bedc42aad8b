// internal/http/respond.go
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	stderrors "github.com/SOL-ICT/recruitment-core/internal/common/errors"
	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/common/metrics"
)

// exposeInternalDetails controls whether internal error details reach
// response bodies. Enabled only in development environments.
var exposeInternalDetails bool

// writeError renders a service error as a structured JSON body. The
// status comes from the error kind, so handlers never pick statuses
// themselves.
func writeError(c *gin.Context, log logger.Logger, err error) {
	se := stderrors.AsStandard(err)
	metrics.OperationErrors.WithLabelValues(c.Request.Method+" "+c.FullPath(), string(se.Code)).Inc()
	if se.HTTPStatus() >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed", map[string]interface{}{
			"path":   c.FullPath(),
			"method": c.Request.Method,
		})
		if !exposeInternalDetails {
			redacted := *se
			redacted.Details = ""
			se = &redacted
		}
	}
	c.JSON(se.HTTPStatus(), gin.H{"error": se})
}

func writeOK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

func writeCreated(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}
