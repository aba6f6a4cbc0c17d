package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scan-api/internal/shared/telemetry"
)

// Envelope is the funnel response shape: success with an optional analysis
// payload, or a sanitized error string.
type Envelope struct {
	Success  bool   `json:"success"`
	Analysis any    `json:"analysis,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Analysis sends a successful analysis payload.
func Analysis(c *gin.Context, analysis any, message string) {
	c.JSON(http.StatusOK, Envelope{
		Success:  true,
		Analysis: analysis,
		Message:  message,
	})
}

// Failure sends an error response. Only the sanitized message reaches the
// client; full diagnostic detail is logged server-side by the caller.
func Failure(c *gin.Context, status int, message string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})

	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   message,
	})
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
