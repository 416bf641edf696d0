package router

import (
	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/constants"
	"github.com/openpress/blogcms/internal/handler"
	"github.com/openpress/blogcms/internal/middleware"
	"github.com/openpress/blogcms/internal/service"
	"go.uber.org/zap"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Post       *handler.PostHandler
	Category   *handler.CategoryHandler
	SiteConfig *handler.SiteConfigHandler
	User       *handler.UserHandler
	Health     *handler.HealthHandler
}

// Deps carries the middleware dependencies the route groups need.
type Deps struct {
	Config   *config.Config
	Tokens   *service.TokenService
	Users    middleware.UserLookup
	Cookies  *middleware.SessionCookies
	Limiter  *middleware.RateLimiter
	Logger   *zap.Logger
	Handlers Handlers
}

// New assembles the gin engine with the full middleware chain and all route
// groups.
func New(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.CORS(),
		deps.Limiter.Handler(),
	)

	engine.GET("/api/health", deps.Handlers.Health.Check)

	session := middleware.Session(deps.Tokens, deps.Users, deps.Cookies, deps.Logger)
	adminOnly := middleware.Authorize(deps.Users, deps.Logger, true, constants.RoleAdmin)

	api := engine.Group("/api/v1")
	registerAuthRoutes(api, session, deps.Handlers.Auth)
	registerUserRoutes(api.Group("/user"), session, deps.Handlers)
	registerAdminRoutes(api.Group("/admin", session, adminOnly), deps.Handlers)

	return engine
}
