// Package api provides the HTTP API for the Cortexa server.
package api

import (
	"github.com/cortexahq/cortexa/internal/api/handlers"
	"github.com/cortexahq/cortexa/internal/api/middleware"
	"github.com/cortexahq/cortexa/internal/auth"
	"github.com/cortexahq/cortexa/internal/db"
	"github.com/cortexahq/cortexa/internal/invites"
	"github.com/cortexahq/cortexa/internal/tenancy"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds configuration for the API router.
type Config struct {
	// Environment selects Gin's mode. "production" disables debug output.
	Environment string
	// Version information for the health endpoint.
	Version string
}

// Router wraps a Gin engine with configured middleware and routes.
type Router struct {
	Engine *gin.Engine
	logger zerolog.Logger
}

// NewRouter creates a new Router with the given dependencies.
func NewRouter(cfg Config, database *db.DB, tokens *auth.TokenIssuer, logger zerolog.Logger) *Router {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		Engine: gin.New(),
		logger: logger.With().Str("component", "router").Logger(),
	}

	r.Engine.Use(gin.Recovery())
	r.Engine.Use(middleware.RequestLogger(logger))

	resolver := tenancy.NewResolver(database, logger)
	inviteService := invites.NewService(database, logger)

	authHandler := handlers.NewAuthHandler(database, tokens, logger)
	orgsHandler := handlers.NewOrganizationsHandler(database, tokens, logger)
	projectsHandler := handlers.NewProjectsHandler(database, logger)
	tenancyHandler := handlers.NewTenancyHandler(resolver, logger)
	invitesHandler := handlers.NewInvitesHandler(inviteService, database, logger)

	handlers.NewHealthHandler(database, cfg.Version).RegisterRoutes(r.Engine)
	r.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes. Registration creates the first user, so it cannot
	// require auth.
	public := r.Engine.Group("/api")
	authHandler.RegisterRoutes(public)
	orgsHandler.RegisterRoutes(public)

	// Authenticated routes.
	authed := r.Engine.Group("/api")
	authed.Use(middleware.AuthMiddleware(tokens, logger))
	projectsHandler.RegisterRoutes(authed)
	tenancyHandler.RegisterRoutes(authed)
	invitesHandler.RegisterRoutes(authed)

	return r
}
