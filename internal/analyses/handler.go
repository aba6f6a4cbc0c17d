package analyses

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-scan-api/internal/shared/server/respond"
	"resume-scan-api/internal/shared/telemetry"
)

// Handler exposes the analysis pipeline over HTTP.
type Handler struct {
	Service *Service
}

// RegisterRoutes attaches analysis routes to the router group. The OPTIONS
// route exists so CORS preflights short-circuit in the middleware instead of
// falling through to a 404.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-resume", h.analyze)
	rg.OPTIONS("/analyze-resume", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// analyze handles POST /analyze-resume. Expects multipart form data with a
// "file" part and an optional "anon_session_id" field.
func (h *Handler) analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Failure(c, http.StatusBadRequest, "No file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Failure(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Failure(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	up := Upload{
		FileName:      fileHeader.Filename,
		MimeType:      contentType(fileHeader.Header.Get("Content-Type")),
		Size:          fileHeader.Size,
		Data:          data,
		AnonSessionID: strings.TrimSpace(c.PostForm("anon_session_id")),
	}
	c.Set("anonSessionId", up.AnonSessionID)

	// Once started, the pipeline runs to completion or its first terminal
	// error; a client disconnect must not abort the conversion poll or skip
	// the session upsert. Per-stage deadlines still apply.
	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.Service.Analyze(ctx, up)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			respond.Failure(c, http.StatusBadRequest, validationErr.Message)
			return
		}
		var pipelineErr *PipelineError
		if errors.As(err, &pipelineErr) {
			respond.Failure(c, http.StatusInternalServerError, pipelineErr.Message)
			return
		}
		telemetry.Error("analysis.unexpected_error", map[string]any{"err": err.Error()})
		respond.Failure(c, http.StatusInternalServerError, "Analysis failed")
		return
	}

	respond.Analysis(c, result, "Resume analyzed successfully!")
}

func contentType(header string) string {
	if header == "" {
		return "application/octet-stream"
	}
	return header
}
