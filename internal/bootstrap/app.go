package bootstrap

import (
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/editor"
	"resume-builder/internal/services/health"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/resume/builder"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	EditorService *editor.Service
	EditorHandler *editor.Handler
}

// Overrides lets tests replace collaborators.
type Overrides struct {
	IDs          builder.IDGenerator
	Placeholders *builder.Placeholders
	Limiter      *middleware.RateLimiter
}

// Build prepares the service, handlers and router.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(cfg, Overrides{})
}

// BuildWith is Build with collaborator overrides.
func BuildWith(cfg config.Config, ov Overrides) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	svc := editor.NewService(editor.Options{
		IdleTTL:      cfg.SessionIdleTTL,
		InboxSize:    cfg.SessionInboxSize,
		MaxSessions:  cfg.SessionMax,
		IDs:          ov.IDs,
		Placeholders: ov.Placeholders,
	})
	handler := editor.NewHandler(svc, editor.HandlerOptions{
		AllowedOrigins: cfg.CORSAllowOrigin,
		WSWriteTimeout: cfg.WSWriteTimeout,
		Limits: editor.Limits{
			Sessions: middleware.RateLimitRule{Rate: cfg.SessionCreateRate, Burst: cfg.SessionCreateBurst},
			Commands: middleware.RateLimitRule{Rate: cfg.CommandRate, Burst: cfg.CommandBurst},
			Reads:    middleware.RateLimitRule{Rate: cfg.ReadRate, Burst: cfg.ReadBurst},
		},
		Limiter: ov.Limiter,
	})

	app := &App{
		Config:        cfg,
		EditorService: svc,
		EditorHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		EditorHandler: handler,
		Health:        health.NewService(svc.Sessions),
	})
	return app, nil
}

// Close releases background resources.
func (a *App) Close() {
	if a != nil && a.EditorService != nil {
		a.EditorService.Close()
	}
}
