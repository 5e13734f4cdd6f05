package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/authcore/account-service/internal/api"
	"github.com/authcore/account-service/internal/core/domain"
	"github.com/authcore/account-service/internal/core/ports"
	"github.com/authcore/account-service/internal/core/service"
	"github.com/authcore/account-service/internal/infrastructure/db/mongo"
	"github.com/authcore/account-service/internal/infrastructure/db/postgres"
	"github.com/authcore/account-service/internal/infrastructure/db/redis"
	"github.com/authcore/account-service/internal/infrastructure/email"
	"github.com/authcore/account-service/internal/pkg/config"
	"github.com/authcore/account-service/internal/pkg/secrets"
	"github.com/authcore/account-service/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Account store ---
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("account store init failed")
	}
	defer closeStore()

	// --- Redis throttle (optional) ---
	var rdb *goredis.Client
	var throttle ports.Throttle
	if cfg.Throttle.Limit > 0 {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		defer rdb.Close()
		throttle = redis.NewThrottle(rdb, cfg.Throttle.Limit, cfg.Throttle.Window)
	}

	// --- Email dispatch ---
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			From: cfg.SMTP.From,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, emails go to the log")
		sender = email.NewLogSender(logger.Component("email"))
	}
	mailer := email.NewDispatcher(0, sender, logger.Component("email"))
	mailer.Start(ctx)

	// --- Core service ---
	accounts := service.NewAccountService(
		store,
		mailer,
		email.NewLinks(cfg.PublicBaseURL),
		throttle,
		secrets.NewHasher(cfg.BcryptCost),
		service.Config{
			UsernamePolicy: domain.DefaultUsernamePolicy,
			ResetEnabled:   cfg.ResetEnabled,
			JWTSecret:      cfg.JWTSecret,
			SessionTTL:     cfg.SessionTTL,
		},
		logger.Component("accounts"),
	)

	e := api.NewRouter(accounts, store, rdb, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("account service started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore connects the configured persistence engine and returns the store
// plus a close function.
func openStore(ctx context.Context, cfg *config.Config) (ports.AccountStore, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		store := mongo.NewAccountStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return store, func() { _ = client.Disconnect(context.Background()) }, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
