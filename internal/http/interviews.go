// internal/http/interviews.go
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/SOL-ICT/recruitment-core/internal/common/logger"
	"github.com/SOL-ICT/recruitment-core/internal/recruitment/interview"
)

// InterviewHandler exposes the invitation lifecycle over HTTP.
type InterviewHandler struct {
	svc *interview.Service
	log logger.Logger
}

func NewInterviewHandler(router gin.IRouter, svc *interview.Service, log logger.Logger) {
	h := &InterviewHandler{svc: svc, log: log.WithFields(map[string]interface{}{"handler": "interviews"})}

	interviews := router.Group("/interviews")
	interviews.GET("", h.List)
	interviews.GET("/upcoming", h.ListUpcoming)
	interviews.POST("/:id/respond", h.Respond)
	interviews.POST("/:id/confirm-attendance", h.ConfirmAttendance)
	interviews.POST("/:id/reschedule", h.RequestReschedule)
	interviews.POST("/:id/complete", RequireRecruiter(), h.Complete)
}

func (h *InterviewHandler) List(c *gin.Context) {
	invitations, err := h.svc.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"invitations": invitations})
}

func (h *InterviewHandler) ListUpcoming(c *gin.Context) {
	invitations, err := h.svc.ListUpcoming(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"invitations": invitations})
}

type respondRequest struct {
	Response string `json:"response" binding:"required"`
	Message  string `json:"message"`
}

func (h *InterviewHandler) Respond(c *gin.Context) {
	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
		return
	}

	inv, err := h.svc.Respond(c.Request.Context(), actorFrom(c), c.Param("id"), req.Response, req.Message)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"invitation": inv})
}

func (h *InterviewHandler) ConfirmAttendance(c *gin.Context) {
	inv, err := h.svc.ConfirmAttendance(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"invitation": inv})
}

type rescheduleRequest struct {
	Reason         string   `json:"reason" binding:"required"`
	PreferredDates []string `json:"preferred_dates"`
}

func (h *InterviewHandler) RequestReschedule(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
		return
	}

	inv, err := h.svc.RequestReschedule(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason, req.PreferredDates)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"invitation": inv})
}

type completeRequest struct {
	Rating   *int   `json:"rating"`
	Decision string `json:"decision"`
	Feedback string `json:"feedback"`
}

func (h *InterviewHandler) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": gin.H{"code": "INVALID_REQUEST_BODY", "message": err.Error()}})
		return
	}

	inv, err := h.svc.Complete(c.Request.Context(), actorFrom(c), c.Param("id"), req.Rating, req.Decision, req.Feedback)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeOK(c, gin.H{"invitation": inv})
}
