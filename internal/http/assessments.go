// internal/http/assessments.go
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/assessment"
)

// AssessmentHandler exposes the test-taking lifecycle over HTTP.
type AssessmentHandler struct {
	svc *assessment.Service
	log logger.Logger
}

func NewAssessmentHandler(router gin.IRouter, svc *assessment.Service, log logger.Logger) {
	h := &AssessmentHandler{svc: svc, log: log.WithFields(map[string]interface{}{"handler": "assessments"})}

	tests := router.Group("/tests")
	tests.GET("", h.ListAvailable)
	tests.POST("/:id/start", h.Start)
	tests.POST("/:id/submit", h.Submit)
	tests.GET("/results", h.Results)
	tests.GET("/results/:id", h.Result)
	tests.GET("/results/:id/review", h.Review)
}

func (h *AssessmentHandler) ListAvailable(c *gin.Context) {
	assignments, err := h.svc.ListAvailable(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"assignments": assignments})
}

func (h *AssessmentHandler) Start(c *gin.Context) {
	started, err := h.svc.Start(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, started)
}

type submitTestRequest struct {
	Answers       map[string]string `json:"answers" binding:"required"`
	AutoSubmitted bool              `json:"auto_submitted"`
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req submitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), actorFrom(c), c.Param("id"), req.Answers, req.AutoSubmitted)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"result": result})
}

func (h *AssessmentHandler) Results(c *gin.Context) {
	results, err := h.svc.Results(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"results": results})
}

func (h *AssessmentHandler) Result(c *gin.Context) {
	result, err := h.svc.Result(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"result": result})
}

func (h *AssessmentHandler) Review(c *gin.Context) {
	review, err := h.svc.Review(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"review": review})
}
