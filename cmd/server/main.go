package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"gamehub/docs"
	"gamehub/internal/auth"
	"gamehub/internal/cache"
	"gamehub/internal/config"
	"gamehub/internal/db"
	"gamehub/internal/handler"
	"gamehub/internal/logger"
	"gamehub/internal/metrics"
	"gamehub/internal/middleware"
	"gamehub/internal/model"
	"gamehub/internal/notify"
	"gamehub/internal/repository"
	"gamehub/internal/router"
	"gamehub/internal/service"
)

// @title GameHub CMS Auth API
// @version 1.0
// @description Sign-in with email, password and one-time passcode, session cookies and admin user management for the GameHub CMS.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name jwt
// @description Session token set by /auth/verify-otp.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		fatal(log, "database init", err)
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping auth table")
		if err := gormDB.Migrator().DropTable(&model.User{}); err != nil {
			log.Warn("drop table failed", slog.String("error", err.Error()))
		}
	}

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		fatal(log, "auto-migrate", err)
	}

	cacheClient := cache.New(cache.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPass,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}, log)
	defer cacheClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, sign-out revocation disabled until it recovers",
			slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
	}
	cancel()

	sender, err := newSender(cfg, log)
	if err != nil {
		fatal(log, "notification sender", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.NewCollector(reg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL())
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	otpService := service.NewOTPService(userRepo, sender,
		service.WithOTPLogger(log),
		service.WithCodeLogging(cfg.LogOTPCodes),
		service.WithOTPMetrics(authMetrics),
	)
	authService := service.NewAuthService(userRepo, otpService, jwtService, tokenStore,
		service.WithAuthLogger(log),
		service.WithAuthMetrics(authMetrics),
	)
	userService := service.NewUserService(userRepo)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})
	defer limiter.Stop()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, cfg, router.Dependencies{
		AuthHandler: handler.NewAuthHandler(authService, cfg.IsProduction(), time.Now),
		UserHandler: handler.NewUserHandler(userService),
		SessionGuard: middleware.SessionGuard(middleware.SessionConfig{
			JWT:      jwtService,
			Resolver: authService,
			Metrics:  authMetrics,
			Logger:   log,
		}),
		SessionParser: middleware.SessionParser(middleware.SessionConfig{
			JWT: jwtService,
		}),
		RateLimiter: limiter,
		Registry:    reg,
		Logger:      log,
	})

	log.Info("server starting",
		slog.String("addr", ":"+cfg.ServerPort),
		slog.String("env", cfg.AppEnv),
		slog.String("swagger", "/swagger/index.html"),
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(log, "server start", err)
	}
}

// newSender picks SMTP when configured. Without SMTP, codes go to the log,
// which configuration validation only allows outside production.
func newSender(cfg *config.Config, log *slog.Logger) (notify.Sender, error) {
	if cfg.SMTPHost != "" {
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Timeout:  10 * time.Second,
		})
	}
	if cfg.IsProduction() {
		return nil, errors.New("SMTP_HOST is required in production")
	}
	log.Warn("SMTP_HOST not set, one-time passcodes will be written to the log")
	return notify.NewLogSender(log), nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}
