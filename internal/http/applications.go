// internal/http/applications.go
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/application"
)

// ApplicationHandler exposes the application lifecycle over HTTP.
type ApplicationHandler struct {
	svc *application.Service
	log logger.Logger
}

func NewApplicationHandler(router gin.IRouter, svc *application.Service, log logger.Logger) {
	h := &ApplicationHandler{svc: svc, log: log.WithFields(map[string]interface{}{"handler": "applications"})}

	router.GET("/jobs/available", h.ListAvailableJobs)

	apps := router.Group("/applications")
	apps.POST("", h.Submit)
	apps.GET("/mine", h.ListMine)
	apps.GET("/:id", h.Get)
	apps.POST("/:id/withdraw", h.Withdraw)
	apps.POST("/:id/transition", RequireRecruiter(), h.Transition)
}

func (h *ApplicationHandler) ListAvailableJobs(c *gin.Context) {
	listings, err := h.svc.ListAvailableJobs(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"jobs": listings})
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	var input application.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
		return
	}

	app, err := h.svc.Submit(c.Request.Context(), actorFrom(c), &input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeCreated(c, gin.H{"application": app})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	apps, err := h.svc.ListMine(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"applications": apps})
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, detail)
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
			return
		}
	}

	app, err := h.svc.Withdraw(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"application": app})
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

func (h *ApplicationHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
		return
	}

	app, err := h.svc.Transition(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status, req.Note)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"application": app})
}
