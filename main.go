package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/basit/fileshare-catalog/auth"
	"github.com/basit/fileshare-catalog/auth/Oauth"
	"github.com/basit/fileshare-catalog/auth/middleware"
	"github.com/basit/fileshare-catalog/catalog"
	"github.com/basit/fileshare-catalog/categories"
	"github.com/basit/fileshare-catalog/config"
	"github.com/basit/fileshare-catalog/handlers"
	"github.com/basit/fileshare-catalog/initializers"
	"github.com/basit/fileshare-catalog/jobs"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/repositories"
	"github.com/basit/fileshare-catalog/routes"
	"github.com/basit/fileshare-catalog/uploads"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logging.New(os.Stderr, "text", "info").Error(context.Background(), "invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initializers.ConnectToDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := initializers.InitAWS(ctx, cfg)
	if err != nil {
		return err
	}

	fileRepo := repositories.NewFileRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	userRepo := repositories.NewUserRepository(db)
	refreshRepo := repositories.NewRefreshTokenRepository(db)
	eventRepo := repositories.NewDownloadEventRepository(db)

	hub := auth.NewHub()
	authSvc := auth.NewService(userRepo, refreshRepo,
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL), hub, logger)
	catalogSvc := catalog.NewService(fileRepo, eventRepo, store, logger)
	categorySvc := categories.NewService(categoryRepo, logger)

	queue := uploads.NewQueue(fileRepo, store, logger, cfg.UploadWorkers)
	queue.OnBatchComplete(func(s uploads.Summary) {
		logger.Info(ctx, "upload batch summary", "batch_id", s.BatchID, "total", s.Total, "failed", s.Failed)
	})
	go queue.Run(ctx)

	// Start cleanup job
	sweeper := jobs.NewOrphanSweeper(fileRepo, store, cfg.CleanupInterval, cfg.OrphanGrace, logger)
	go sweeper.Run(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	sessionStore := Oauth.InitStore(cfg)

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))
	// Add CORS middleware before other middleware
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(
		limiter.Middleware(),
		sessions.Sessions(Oauth.SessionName, sessionStore),
	)

	var oauthHandler *Oauth.Handler
	if cfg.OAuthEnabled() {
		oauthHandler = Oauth.NewHandler(userRepo, authSvc, cfg, logger)
	}

	routes.RegisterFileRoutes(router,
		handlers.NewFileHandler(catalogSvc),
		handlers.NewShareHandler(catalogSvc, "", logger),
		authSvc)
	routes.RegisterCategoryRoutes(router, handlers.NewCategoryHandler(categorySvc), authSvc)
	routes.RegisterAdminRoutes(router,
		handlers.NewAdminHandler(catalogSvc, categorySvc, queue),
		handlers.NewUploadHandler(queue, cfg.UploadTempDir, cfg.MaxUploadBytes, logger),
		handlers.NewUploadStream(queue, hub, cfg.FrontendURL, logger),
		authSvc, cfg.FrontendURL)
	routes.RegisterAuthRoutes(router, handlers.NewAuthHandler(authSvc, cfg.SecureCookies, logger), oauthHandler, authSvc)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
