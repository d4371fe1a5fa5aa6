// @title        Phonebook API
// @version      1.0
// @description  Per-user phonebook with email-verified accounts.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/phonebook/phonebook-api/docs"
	"github.com/phonebook/phonebook-api/internal/api"
	"github.com/phonebook/phonebook-api/internal/api/handler"
	"github.com/phonebook/phonebook-api/internal/core/ports"
	"github.com/phonebook/phonebook-api/internal/core/service"
	"github.com/phonebook/phonebook-api/internal/infrastructure/config"
	mongodb "github.com/phonebook/phonebook-api/internal/infrastructure/db/mongo"
	redisdb "github.com/phonebook/phonebook-api/internal/infrastructure/db/redis"
	"github.com/phonebook/phonebook-api/internal/infrastructure/http/handlers"
	"github.com/phonebook/phonebook-api/internal/infrastructure/imaging"
	"github.com/phonebook/phonebook-api/internal/infrastructure/mail"
	"github.com/phonebook/phonebook-api/internal/infrastructure/queue"
	"github.com/phonebook/phonebook-api/internal/infrastructure/storage"
	"github.com/phonebook/phonebook-api/pkg/logger"
)

const (
	serviceName     = "phonebook-api"
	shutdownTimeout = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	users := mongodb.NewUserRepository(db)
	contacts := mongodb.NewContactRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, contacts); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// --- Mail ---
	var mailer ports.VerificationMailer = mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)

	policy := service.MailPolicy(cfg.SMTP.Delivery)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if policy == service.MailBestEffort {
		dispatcher := queue.NewMailDispatcher(cfg.SMTP.Workers, mailer, log)
		dispatcher.Start(workerCtx)
		defer func() {
			stopWorkers()
			dispatcher.Wait()
		}()
		mailer = dispatcher
		log.Info().Int("workers", cfg.SMTP.Workers).Msg("mail dispatcher started")
	}

	// --- Core services ---
	tokens, err := service.NewTokenIssuer(service.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.JWTTTL,
	})
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		users,
		service.NewPasswordHasher(),
		tokens,
		mailer,
		redisdb.NewResendCooldown(rdb, cfg.Auth.ResendCooldown),
		service.AuthOptions{BaseURL: cfg.BaseURL, MailPolicy: policy},
		log,
	)

	if err := os.MkdirAll(cfg.Avatar.TmpDir, 0o755); err != nil {
		return err
	}
	avatarStore, err := storage.NewDiskAvatarStore(cfg.Avatar.PublicDir)
	if err != nil {
		return err
	}
	avatarService := service.NewAvatarService(users, imaging.NewAvatarNormalizer(), avatarStore, log)
	contactService := service.NewContactService(contacts, log)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(authService, avatarService, cfg.Avatar.TmpDir, log),
		Contacts:      handler.NewContactHandler(contactService),
		Authenticator: authService,
		Readiness: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		PublicDir:      cfg.Avatar.PublicDir,
		AvatarMaxBytes: cfg.Avatar.MaxBytes,
		Log:            log,
	})
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	return nil
}
