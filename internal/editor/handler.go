package editor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/render"
)

const (
	maxCommandBody = 64 << 10 // 64KB
	requestTimeout = 5 * time.Second
)

// Rate limit groups.
const (
	limitSessions = "SESSIONS"
	limitCommands = "COMMANDS"
	limitReads    = "READS"
)

// Limits are the token buckets guarding the builder routes. Zero rules
// disable limiting.
type Limits struct {
	// Sessions is per client IP and only spent by requests that would open
	// a new session.
	Sessions middleware.RateLimitRule
	// Commands is per owner, shared by HTTP commands and stream frames.
	Commands middleware.RateLimitRule
	// Reads is per owner for the GET routes.
	Reads middleware.RateLimitRule
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	AllowedOrigins []string
	WSWriteTimeout time.Duration
	Limits         Limits
	Limiter        *middleware.RateLimiter
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	AllowedOrigins []string
	WSWriteTimeout time.Duration
	Limits         Limits
	Limiter        *middleware.RateLimiter
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, opts HandlerOptions) *Handler {
	if opts.WSWriteTimeout <= 0 {
		opts.WSWriteTimeout = defaultWriteWait
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewRateLimiter(nil)
	}
	return &Handler{
		Svc:            svc,
		AllowedOrigins: opts.AllowedOrigins,
		WSWriteTimeout: opts.WSWriteTimeout,
		Limits:         opts.Limits,
		Limiter:        opts.Limiter,
	}
}

// RegisterRoutes attaches builder routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	b := rg.Group("/builder",
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        map[string]middleware.RateLimitRule{limitSessions: h.Limits.Sessions},
			DefaultGroup: limitSessions,
			KeyFor:       middleware.ClientIPKey,
			Skip: func(c *gin.Context) bool {
				return h.Svc.Has(middleware.OwnerIDFromContext(c))
			},
			Limiter: h.Limiter,
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				limitCommands: h.Limits.Commands,
				limitReads:    h.Limits.Reads,
			},
			DefaultGroup: limitReads,
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost {
					return limitCommands
				}
				return limitReads
			},
			Limiter: h.Limiter,
		}),
	)
	b.GET("", h.view)
	b.POST("/commands", h.command)
	b.GET("/print", h.print)
	b.GET("/ws", h.stream)
}

func (h *Handler) view(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	snap, err := h.Svc.View(ctx, middleware.OwnerIDFromContext(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond.OK(c, snap)
}

func (h *Handler) command(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCommandBody)

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	cmd, err := req.Command()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set(middleware.CommandKey, cmd.Name())

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	ownerID := middleware.OwnerIDFromContext(c)
	snap, err := h.Svc.Dispatch(ctx, ownerID, cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Set(middleware.ChangedKey, snap.Result != nil && snap.Result.Changed)

	// A plain HTTP client has no later turn to observe, so deferred work is
	// settled before answering.
	if snap.Result != nil && snap.Result.Pending {
		res := snap.Result
		if snap, err = h.Svc.Settle(ctx, ownerID); err != nil {
			writeServiceError(c, err)
			return
		}
		settled := *res
		settled.Pending = false
		snap.Result = &settled
	}
	respond.OK(c, snap)
}

func (h *Handler) print(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	snap, err := h.Svc.View(ctx, middleware.OwnerIDFromContext(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	body, err := render.RenderPrintHTML(snap.View.Preview, render.PrintOptions{
		AutoPrint: c.Query("autoprint") == "1",
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render preview", nil)
		return
	}
	respond.HTML(c, http.StatusOK, body)
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCommand):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrSessionLimit):
		respond.Error(c, http.StatusServiceUnavailable, "session_limit", "too many open sessions", nil)
	case errors.Is(err, ErrSessionClosed):
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", "session is not available", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "timeout", "session did not answer in time", nil)
	case errors.Is(err, context.Canceled):
		c.Abort()
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process request", nil)
	}
}
