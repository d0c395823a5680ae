package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-submit-api/internal/auth"
	"github.com/noah-isme/gema-submit-api/internal/config"
	"github.com/noah-isme/gema-submit-api/internal/handler"
	"github.com/noah-isme/gema-submit-api/internal/logger"
	"github.com/noah-isme/gema-submit-api/internal/middleware"
	"github.com/noah-isme/gema-submit-api/internal/router"
	"github.com/noah-isme/gema-submit-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	store, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}

	files, err := openFileStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Str("driver", cfg.UploadDriver).Msg("failed to open file storage")
	}

	redisClient := openCache(ctx, cfg, appLogger)
	natsConn, events := openEvents(cfg, appLogger)

	hasher, err := service.NewCredentialHasher(cfg.PasswordScheme)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("invalid password scheme")
	}

	var (
		policy auth.Policy = auth.TrustPolicy{}
		tokens service.TokenIssuer
		parser middleware.TokenParser
	)
	if cfg.AuthMode == config.AuthModeJWT {
		issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
		policy, tokens, parser = auth.NewRolePolicy(), issuer, issuer
	} else {
		appLogger.Warn().Msg("AUTH_MODE=trust: role-restricted routes are not enforced")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	seedService := service.NewSeedService(store, hasher, service.AdminAccount{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, appLogger)
	if _, err := seedService.EnsureAdmin(ctx); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to seed admin account")
	}

	var sanitizer *bluemonday.Policy
	if cfg.SanitizeText {
		sanitizer = bluemonday.StrictPolicy()
	}

	hub := service.NewEventHub(policy, appLogger)
	uploadService := service.NewUploadService(files, appLogger)
	listings := service.NewListingCache(redisClient, cfg.CacheTTL, appLogger)
	authService := service.NewAuthService(store, hasher, tokens, validate, listings, appLogger)
	userService := service.NewUserService(store, hasher, policy, validate, listings, appLogger)
	submissionService := service.NewSubmissionService(store, uploadService, validate, service.SubmissionOptions{
		Policy:    policy,
		Cache:     listings,
		Events:    service.NewMultiPublisher(hub, events),
		Sanitizer: sanitizer,
	}, appLogger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    cfg.BodyLimit(),
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &appLogger,
		AllowOrigins: cfg.AllowOrigins,
		Tokens:       parser,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, appLogger),
		UserHandler:       handler.NewUserHandler(userService, appLogger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, appLogger),
		EventStream:       handler.NewEventStreamHandler(hub, appLogger),
		UploadHandler:     handler.NewUploadHandler(uploadService, appLogger),
	})

	go func() {
		appLogger.Info().Str("addr", cfg.HTTPAddress()).Str("storage", cfg.StorageDriver).Msg("server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			appLogger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, appLogger)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(closeCtx); err != nil {
		appLogger.Error().Err(err).Msg("failed to close storage")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			appLogger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}

	appLogger.Info().Msg("server stopped")
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
