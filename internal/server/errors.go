package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
)

// respond wraps payloads in the same {success, data, error} envelope
// the hosted API uses, so UI surfaces speak one shape regardless of
// backend.
func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "error": nil})
}

// AbortWithError maps the failure taxonomy onto HTTP statuses. Every
// surfaced error carries a human-readable message.
func AbortWithError(c *gin.Context, err error) {
	status := statusForKind(toolerr.KindOf(err))
	body := gin.H{"success": false, "data": nil, "error": err.Error()}
	if attempts := toolerr.AttemptsOf(err); attempts > 1 {
		body["attempts"] = attempts
	}
	c.AbortWithStatusJSON(status, body)
}

func statusForKind(kind toolerr.Kind) int {
	switch kind {
	case toolerr.KindValidation:
		return http.StatusBadRequest
	case toolerr.KindNotFound:
		return http.StatusNotFound
	case toolerr.KindPermissionDenied:
		return http.StatusForbidden
	case toolerr.KindTimeout:
		return http.StatusGatewayTimeout
	case toolerr.KindToolNotInstalled:
		return http.StatusServiceUnavailable
	case toolerr.KindNetwork:
		return http.StatusBadGateway
	case toolerr.KindParse, toolerr.KindExecutionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
