// @title                       Farm Guardian API
// @version                     1.0
// @description                 Biosecurity management backend for pig and poultry farms: registration, sessions, farm data and records.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/farmguardian/farm-guardian/internal/api"
	"github.com/farmguardian/farm-guardian/internal/api/handler"
	"github.com/farmguardian/farm-guardian/internal/api/i18n"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
	"github.com/farmguardian/farm-guardian/internal/core/service"
	"github.com/farmguardian/farm-guardian/internal/infrastructure/db/mongo"
	"github.com/farmguardian/farm-guardian/internal/infrastructure/db/redis"
	"github.com/farmguardian/farm-guardian/internal/infrastructure/queue"
	"github.com/farmguardian/farm-guardian/internal/infrastructure/storage"
	"github.com/farmguardian/farm-guardian/internal/pkg/config"
	"github.com/farmguardian/farm-guardian/internal/pkg/password"
	"github.com/farmguardian/farm-guardian/internal/pkg/validation"
	"github.com/farmguardian/farm-guardian/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "farm-guardian",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongo.Disconnect(context.Background(), mongoClient); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongo.NewUserRepository(db)
	farms := mongo.NewFarmRepository(db)
	alerts := mongo.NewAlertRepository(db)
	compliance := mongo.NewComplianceRepository(db)
	feedback := mongo.NewFeedbackRepository(db)
	assessments := mongo.NewAssessmentRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, farms, alerts, compliance, feedback, assessments); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	checks := map[string]handler.Checker{"mongodb": mongo.Pinger(db)}

	// --- Redis (optional: token revocation) ---
	var revoker ports.TokenRevoker
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		revoker = redis.NewTokenRevoker(rdb)
		checks["redis"] = redis.Pinger(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens server-side")
	}

	// --- Events ---
	var publisher ports.EventPublisher = queue.NewLogPublisher(logger.Component("events"))
	var amqpConn *amqp.Connection
	if cfg.Events.AMQPURL != "" {
		conn, ch, err := queue.ConnectRabbitMQ(cfg.Events.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq connection failed")
		}
		amqpConn = conn
		rabbit, err := queue.NewRabbitPublisher(ch, cfg.Events.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq setup failed")
		}
		publisher = rabbit
	}

	dispatcher := queue.NewDispatcher(cfg.Events.Workers, publisher, logger.Component("dispatcher"))
	dispatcher.Start(context.Background())

	// --- File storage ---
	files, err := storage.New(ctx, storage.Config{
		Driver:    cfg.Storage.Driver,
		BasePath:  cfg.Storage.UploadDir,
		BaseURL:   cfg.Storage.BaseURL,
		Endpoint:  cfg.Storage.MinioEndpoint,
		AccessKey: cfg.Storage.MinioAccessKey,
		SecretKey: cfg.Storage.MinioSecretKey,
		Bucket:    cfg.Storage.MinioBucket,
		UseSSL:    cfg.Storage.MinioUseSSL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("file storage setup failed")
	}
	if m, ok := files.(*storage.MinioStorage); ok {
		checks["storage"] = m.Ping
	}

	// --- Services ---
	validate := validation.New()
	uploads := service.NewUploadPolicy(files, cfg.Storage.MaxUploadBytes, logger.Component("uploads"))

	authService, err := service.NewAuthService(
		users,
		password.NewHasher(cfg.BcryptCost),
		validate,
		uploads,
		revoker,
		dispatcher,
		service.AuthConfig{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL},
		logger.Component("auth"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("auth service setup failed")
	}

	svc := api.Services{
		Auth:        authService,
		Profiles:    service.NewProfileService(users, uploads, logger.Component("profile")),
		Farms:       service.NewFarmService(farms, validate, logger.Component("farms")),
		Alerts:      service.NewAlertService(alerts, farms, validate, dispatcher, logger.Component("alerts")),
		Compliance:  service.NewComplianceService(compliance, farms, validate, logger.Component("compliance")),
		Feedback:    service.NewFeedbackService(feedback, validate, logger.Component("feedback")),
		Assessments: service.NewAssessmentService(assessments, farms, validate, logger.Component("assessments")),
	}

	opts := api.Options{
		FrontendURL:    cfg.FrontendURL,
		SecureCookie:   cfg.CookieSecure,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		Checks:         checks,
		Validator:      validate,
		Translator:     i18n.MustNew(),
		Logger:         logger.Component("http"),
	}
	if local, ok := files.(*storage.LocalStorage); ok {
		opts.UploadDir = local.Dir()
		opts.UploadPrefix = local.URLPrefix()
	}

	e := api.NewRouter(svc, opts)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("event dispatcher did not drain")
	}
	if amqpConn != nil {
		if err := amqpConn.Close(); err != nil {
			log.Error().Err(err).Msg("rabbitmq close")
		}
	}
}
