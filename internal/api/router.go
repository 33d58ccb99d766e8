package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/formsdesk/forms-api/internal/api/handler"
	"github.com/formsdesk/forms-api/internal/api/metrics"
	"github.com/formsdesk/forms-api/internal/api/middleware"
	"github.com/formsdesk/forms-api/internal/core/domain"
	"github.com/formsdesk/forms-api/internal/core/ports"
	"github.com/formsdesk/forms-api/internal/core/service"
	"github.com/formsdesk/forms-api/internal/infrastructure/config"
	"github.com/formsdesk/forms-api/internal/infrastructure/http/handlers"
)

// Dependencies are the adapters the router wires the services onto.
type Dependencies struct {
	Config   *config.Config
	Users    ports.UserRepository
	Sessions ports.SessionStore
	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handlers.Check
	// Registry receives the HTTP and auth metrics and backs /metrics.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// route is one entry of the route table. Authentication and role
// requirements are declared here rather than inside handlers.
type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	auth    middleware.AuthMode
	roles   domain.RoleRequirement
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	cfg := deps.Config
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "forms",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	m := metrics.New(reg)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	identities := service.NewIdentityLoader(deps.Users, cfg.StoreTimeout)
	authService := service.NewAuthService(deps.Users, hasher, tokens, identities, cfg.StoreTimeout, deps.Log)
	sessionManager := service.NewSessionManager(deps.Sessions, cfg.Session.TTL, cfg.StoreTimeout, deps.Log)
	guard := service.NewAccessGuard()

	authHandler := handler.NewAuthHandler(authService, sessionManager, handler.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		MaxAge: sessionManager.TTL(),
	}, m)

	identify := middleware.IdentifyConfig{
		Sessions:   sessionManager,
		Auth:       authService,
		Identities: identities,
		CookieName: cfg.Session.CookieName,
		Log:        deps.Log,
	}

	// --- Auth routes ---
	routes := []route{
		{http.MethodPost, "/auth/register", authHandler.Register, middleware.AuthNone, nil},
		{http.MethodPost, "/auth/login", authHandler.Login, middleware.AuthNone, nil},
		{http.MethodGet, "/auth/profile", authHandler.Profile, middleware.AuthAny, nil},
		{http.MethodPost, "/auth/logout", authHandler.Logout, middleware.AuthSession, nil},
		{http.MethodGet, "/auth/admin", authHandler.Admin, middleware.AuthAny, domain.Requires(domain.RoleAdmin)},
		{http.MethodGet, "/auth/jwt-guarded", authHandler.JWTGuarded, middleware.AuthBearer, nil},
	}
	for _, r := range routes {
		e.Add(r.method, r.path, r.handler, routeMiddleware(r, identify, guard, m)...)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(deps.Checks, cfg.StoreTimeout)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	deps.Log.Debug().Int("routes", len(e.Routes())).Msg("router ready")
	return e
}

// routeMiddleware turns a route's declared requirements into its middleware
// chain: identify, then require an identity, then check roles.
func routeMiddleware(r route, identify middleware.IdentifyConfig, guard middleware.Authorizer, m *metrics.Metrics) []echo.MiddlewareFunc {
	if r.auth == middleware.AuthNone {
		return nil
	}

	chain := []echo.MiddlewareFunc{
		middleware.Identify(identify, r.auth),
		middleware.RequireIdentity(r.path, m),
	}
	if !r.roles.Empty() {
		chain = append(chain, middleware.RequireRoles(guard, r.roles, r.path, m))
	}
	return chain
}
