// internal/http/actor.go
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SOL-ICT/recruitment-core/internal/models"
)

const actorContextKey = "actorContext"

// RequireActor resolves the acting identity from request headers and
// aborts with 401 when none is present. Authentication itself happens
// upstream at the gateway; these headers are what it forwards.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := models.ActorContext{
			ActorID:     c.GetHeader("X-Actor-ID"),
			CandidateID: c.GetHeader("X-Candidate-ID"),
			Role:        c.GetHeader("X-Actor-Role"),
		}
		if actor.Role == "" && actor.CandidateID != "" {
			actor.Role = models.RoleCandidate
		}
		if actor.AuditID() == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHENTICATED", "message": "actor identity headers missing"},
			})
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireRecruiter gates recruiter-only endpoints.
func RequireRecruiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorFrom(c).Role != models.RoleRecruiter {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "FORBIDDEN", "message": "recruiter role required"},
			})
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.ActorContext {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(models.ActorContext); ok {
			return actor
		}
	}
	return models.ActorContext{}
}
