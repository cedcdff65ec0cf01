package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "postboard/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"postboard/internal/auth"
	"postboard/internal/cache"
	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/events"
	"postboard/internal/handler"
	"postboard/internal/logging"
	"postboard/internal/repository"
	"postboard/internal/router"
	"postboard/internal/service"
	"postboard/internal/validation"
)

const tokenPruneInterval = 10 * time.Minute

// @title Postboard API
// @version 1.0
// @description Social posting API with token authentication, posts, tags and comments.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token returned by /login.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.New(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		logger.WithError(err).Fatal("database init")
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables...")
		db.Reset(gormDB, logger)
	}

	if err := db.Migrate(gormDB); err != nil {
		logger.WithError(err).Fatal("migrate")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		// the login throttle fails closed, so logins will be rejected until redis is back
		logger.WithError(err).Warn("redis unreachable")
	}

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tokenRepo := repository.NewAccessTokenRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	// Initialize auth components
	tokenStore := auth.NewTokenStore(tokenRepo, cacheClient)
	throttle := auth.NewThrottle(cacheClient, time.Duration(cfg.LoginDecaySeconds)*time.Second)

	// Initialize services
	validator := validation.New()
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(userRepo, userService, tokenStore, throttle, validator, cfg.LoginMaxAttempts)
	postService := service.NewPostService(postRepo, validator, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo, validator, publisher)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, authService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(),
		Post:    handler.NewPostHandler(postService),
		Comment: handler.NewCommentHandler(commentService),
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go pruneTokens(ctx, tokenStore, logger)

	logger.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.WithField("addr", addr).Info("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server stopped")
}

// newPublisher connects to RabbitMQ when configured. Events are optional,
// so a failed dial degrades to a no-op publisher.
func newPublisher(cfg *config.Config, logger *logrus.Logger) events.Publisher {
	if cfg.RabbitMQURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange, logger)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable, domain events disabled")
		return events.NopPublisher{}
	}
	logger.WithField("exchange", cfg.EventsExchange).Info("publishing domain events")
	return publisher
}

func pruneTokens(ctx context.Context, store *auth.TokenStore, logger *logrus.Logger) {
	ticker := time.NewTicker(tokenPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PruneExpired(ctx)
			if err != nil {
				logger.WithError(err).Warn("token pruning failed")
				continue
			}
			if n > 0 {
				logger.WithField("deleted", n).Debug("pruned expired access tokens")
			}
		}
	}
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
