package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	echoapi "github.com/openlore/crosspost/api/echo"
	"github.com/openlore/crosspost/cache"
	rediscache "github.com/openlore/crosspost/cache/redis"
	"github.com/openlore/crosspost/client"
	"github.com/openlore/crosspost/config"
	"github.com/openlore/crosspost/internal/auth"
	"github.com/openlore/crosspost/log"
	"github.com/openlore/crosspost/mongodb"
	"github.com/openlore/crosspost/services"
	"github.com/openlore/crosspost/tracing"
)

var appLogger log.Logger

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger = log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "Starting crosspost server", map[string]interface{}{
		"http_port":     cfg.HTTPPort,
		"mongo_db_name": cfg.MongoDBName,
		"remote_site":   cfg.CrosspostBaseURL,
		"log_level":     logLevel.String(),
	})
	if cfg.CrosspostSigningSecret == "" {
		appLogger.Warn(ctx, "No crosspost signing secret configured, cross-site calls will fail")
	}

	tp, err := tracing.InitTracerProvider(cfg.SiteName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracing", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			appLogger.Error(context.Background(), "Failed to shut down tracer provider", err)
		}
	}()

	mongoClient, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to MongoDB", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error(context.Background(), "Failed to disconnect MongoDB", err)
		}
	}()

	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize user repository", err)
	}
	postRepo := mongodb.NewPostRepository(db)
	sessionRepo, err := mongodb.NewSessionRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize session repository", err)
	}

	var sessionStore cache.SessionStore
	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		sessionStore = rediscache.NewSessionStore(redisClient, "crosspost")
		appLogger.Info(ctx, "Using Redis session cache", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		memStore := cache.NewInMemorySessionStore()
		defer memStore.Stop()
		sessionStore = memStore
	}

	tokenService := services.NewTokenService(cfg.CrosspostSigningSecret)
	sessionService := services.NewSessionService(
		userRepo, sessionRepo, sessionStore,
		auth.NewBcryptPasswordHasher(0),
		time.Duration(cfg.SessionTTLHour)*time.Hour,
	)
	remote := client.NewCrossSiteClient(cfg.CrosspostBaseURL, cfg.SiteName, cfg.CrosspostTimeout(), nil)
	crossposter := services.NewCrossposter(userRepo, postRepo, tokenService, remote)

	e := echo.New()
	e.HideBanner = true
	api := echoapi.NewCrosspostAPI(userRepo, postRepo, tokenService, sessionService, crossposter)
	api.RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(context.Background(), "HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Graceful shutdown failed", err)
	}
}
