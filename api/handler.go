package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voiceingest/errors"
	"github.com/kbukum/voiceingest/intake"
	"github.com/kbukum/voiceingest/logger"
	"github.com/kbukum/voiceingest/pipeline"
	"github.com/kbukum/voiceingest/server"
	"github.com/kbukum/voiceingest/server/middleware"
	"github.com/kbukum/voiceingest/usage"
)

// Runner runs one transcription request.
type Runner interface {
	Run(ctx context.Context, req *http.Request, requestID string) (*pipeline.Result, error)
}

// UsageReader reads the ledger for display.
type UsageReader interface {
	Usage(ctx context.Context, identity, kind string) (usage.Usage, error)
}

// TranscribeResponse is the success body of POST /api/stt/transcribe.
type TranscribeResponse struct {
	Transcript string       `json:"transcript"`
	Usage      *usage.Usage `json:"usage,omitempty"`
}

// Handler serves the speech-to-text routes.
type Handler struct {
	runner   Runner
	usage    UsageReader
	identity intake.IdentityNames
	log      *logger.Logger
}

// NewHandler creates a Handler. identity names the request keys read by
// the usage endpoint; it should match the intake configuration.
func NewHandler(runner Runner, reader UsageReader, identity intake.IdentityNames, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{runner: runner, usage: reader, identity: identity, log: log.WithComponent("api")}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	stt := r.Group("/api/stt")
	stt.POST("/transcribe", h.Transcribe)
	stt.GET("/usage", h.Usage)
}

// Transcribe runs the pipeline for one upload.
func (h *Handler) Transcribe(c *gin.Context) {
	requestID := c.GetHeader(middleware.HeaderRequestID)
	res, err := h.runner.Run(c.Request.Context(), c.Request, requestID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, TranscribeResponse{Transcript: res.Transcript, Usage: res.Usage})
}

// Usage reports today's transcription count and limit for an identity.
func (h *Handler) Usage(c *gin.Context) {
	identity := intake.ResolveIdentity(intake.SourceFromRequest(c.Request, h.identity))
	if identity == "" {
		server.RespondWithError(c, apperrors.MissingUserID())
		return
	}

	u, err := h.usage.Usage(c.Request.Context(), identity, usage.KindSTT)
	if err != nil {
		h.log.Error("usage lookup failed", logger.Fields(
			logger.FieldUserID, identity,
			logger.FieldError, err.Error(),
		))
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, u)
}
