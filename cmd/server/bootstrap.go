package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/otpdash/internal/api"
	"github.com/charlesng35/otpdash/internal/app"
	"github.com/charlesng35/otpdash/internal/app/maintenance"
	iauth "github.com/charlesng35/otpdash/internal/auth"
	"github.com/charlesng35/otpdash/internal/database"
	"github.com/charlesng35/otpdash/internal/middleware"
	"github.com/charlesng35/otpdash/internal/services"
	"github.com/charlesng35/otpdash/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	SessionSvc *iauth.SessionService
	OTPSvc     *services.OTPService
	Cleaner    *maintenance.Cleaner
	RateStore  *middleware.MemoryRateStore
	Router     *gin.Engine
}

// bootstrapRuntime initialises the database, services, and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	signer, err := iauth.NewTokenSigner(cfg.Auth.TokenSignerConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise token signer: %w", err)
	}

	stack.SessionSvc, err = iauth.NewSessionService(stack.DB, signer, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise session service: %w", err)
	}

	mailer, err := cfg.Email.BuildMailer()
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	stack.OTPSvc, err = services.NewOTPService(stack.DB, mailer, stack.SessionSvc,
		services.WithOTPExpiry(cfg.Auth.OTPTTL()),
		services.WithDashboardURL(dashboardURL(cfg.Server.PublicURL)),
		services.WithSender(cfg.Email.Sender()),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise otp service: %w", err)
	}

	source, err := cfg.Catalog.BuildSource()
	if err != nil {
		return nil, fmt.Errorf("initialise catalog source: %w", err)
	}

	stack.RateStore = middleware.NewMemoryRateStore(nil)

	stack.Cleaner = maintenance.NewCleaner(stack.SessionSvc,
		maintenance.WithSessionSchedule(cfg.Auth.Session.CleanupSchedule),
		maintenance.WithRatePruner(stack.RateStore),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:        stack.DB,
		Config:    cfg,
		OTP:       stack.OTPSvc,
		Sessions:  stack.SessionSvc,
		Catalog:   source,
		RateStore: stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	log.Info("runtime ready",
		zap.String("mail_provider", cfg.Email.Provider),
		zap.String("catalog", cfg.Catalog.BaseURL),
	)

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func dashboardURL(publicURL string) string {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if base == "" {
		return "/dashboard"
	}
	return base + "/dashboard"
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
