package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/dto"
	"github.com/openpress/blogcms/internal/handler"
	"github.com/openpress/blogcms/internal/middleware"
	"github.com/openpress/blogcms/internal/repository"
	"github.com/openpress/blogcms/internal/router"
	"github.com/openpress/blogcms/internal/service"
	"github.com/openpress/blogcms/pkg/circuit"
	"github.com/openpress/blogcms/pkg/database"
	"github.com/openpress/blogcms/pkg/logger"
	"github.com/openpress/blogcms/pkg/mailer"
	"github.com/openpress/blogcms/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.GetLogger()

	if err := dto.RegisterValidations(); err != nil {
		log.Fatal("Failed to register validations", zap.Error(err))
	}

	db, err := database.NewPostgresDB(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.CloseDB(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := database.Seed(db); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	cache := redis.NewClient(redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		Enabled:      cfg.Redis.Enabled,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log)
	defer func() {
		if err := cache.Close(); err != nil {
			log.Error("Failed to close redis client", zap.Error(err))
		}
	}()

	userRepo := repository.NewUserRepository(db, log)
	otpRepo := repository.NewOtpRepository(db, log)
	postRepo := repository.NewPostRepository(db, log)
	categoryRepo := repository.NewCategoryRepository(db, log)
	siteConfigRepo := repository.NewSiteConfigRepository(db, log)

	smtpBreaker := circuit.NewBreaker("smtp", circuit.DefaultConfig(), log)
	otpMailer, err := mailer.NewSMTPMailer(cfg.SMTP, smtpBreaker, log)
	if err != nil {
		log.Fatal("Failed to init mailer", zap.Error(err))
	}

	tokenService := service.NewTokenService(cfg.Token)
	authService := service.NewAuthService(userRepo, otpRepo, tokenService, otpMailer, cfg.Otp, log)
	postService := service.NewPostService(postRepo, cache, cfg.Redis, log)
	categoryService := service.NewCategoryService(categoryRepo, log)
	siteConfigService := service.NewSiteConfigService(siteConfigRepo, cache, cfg.Redis, log)
	userService := service.NewUserService(userRepo, log)

	cookies := middleware.NewSessionCookies(cfg.App, tokenService)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cache, log)

	engine := router.New(router.Deps{
		Config:  cfg,
		Tokens:  tokenService,
		Users:   userRepo,
		Cookies: cookies,
		Limiter: limiter,
		Logger:  log,
		Handlers: router.Handlers{
			Auth:       handler.NewAuthHandler(authService, cookies),
			Post:       handler.NewPostHandler(postService),
			Category:   handler.NewCategoryHandler(categoryService),
			SiteConfig: handler.NewSiteConfigHandler(siteConfigService),
			User:       handler.NewUserHandler(userService),
			Health:     handler.NewHealthHandler(db, cache),
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.App.Timeout,
		WriteTimeout: cfg.App.Timeout,
	}

	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.App.Port),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
