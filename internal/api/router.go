package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/app"
	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/catalog"
	"github.com/charlesng35/otpdash/internal/handlers"
	"github.com/charlesng35/otpdash/internal/middleware"
	"github.com/charlesng35/otpdash/internal/services"
	"github.com/charlesng35/otpdash/web"
)

// Dependencies bundles the services the router wires into handlers.
type Dependencies struct {
	DB        *gorm.DB
	Config    *app.Config
	OTP       *services.OTPService
	Sessions  *iauth.SessionService
	Catalog   catalog.Source
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	cfg := deps.Config

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.IsProduction()))
	r.Use(middleware.CORS(cfg.CORS.Origins))

	r.GET("/health", handlers.Health(deps.DB))

	cookie := cfg.CookieOptions()

	otpHandler, err := handlers.NewOTPHandler(deps.OTP, deps.Sessions, cookie)
	if err != nil {
		return nil, err
	}
	sessionHandler, err := handlers.NewSessionHandler(deps.Sessions, cookie)
	if err != nil {
		return nil, err
	}
	dashboardHandler, err := handlers.NewDashboardHandler(deps.Catalog, cfg.Catalog.SnapshotStore())
	if err != nil {
		return nil, err
	}

	registerAuthRoutes(r, authRouteDeps{
		OTPHandler:     otpHandler,
		SessionHandler: sessionHandler,
		Sessions:       deps.Sessions,
		Limiter:        middleware.RateLimit(deps.RateStore, cfg.RateLimit.Requests, cfg.RateLimit.Window),
	})

	api := r.Group("/api")
	api.Use(middleware.RequireSession(deps.Sessions))
	api.GET("/dashboard/products", dashboardHandler.Products)

	// Pages
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	r.GET("/auth", handlers.AuthPage)
	r.GET("/dashboard", middleware.SessionGate(deps.Sessions, "/auth"), handlers.DashboardPage)

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
