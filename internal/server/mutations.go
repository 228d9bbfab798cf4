package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// Mutate applies one state change. The service enforces confirmation
// for destructive operations and invalidates the affected cache scope
// after success; a stop of the live tracking session additionally
// resets the monitor without waiting for its next poll.
func (s *Server) Mutate(c *gin.Context) {
	if !s.limiter.Allow(c.ClientIP()) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"data":    nil,
			"error":   "too many mutations, slow down",
		})
		return
	}

	var req domain.MutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, toolerr.Wrap(toolerr.KindValidation, "mutate", err))
		return
	}

	result, err := s.svc.Mutate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if req.Entity == domain.EntityTracking && req.Op == domain.OpStopTracking {
		s.monitor.NotifyStopped()
	}
	respond(c, result)
}
