// @title           Auth Server API
// @version         1.0
// @description     User registration, login and refresh-token sessions.
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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
	"github.com/rs/zerolog"

	"github.com/userhub/auth-server/internal/api"
	"github.com/userhub/auth-server/internal/api/handler"
	"github.com/userhub/auth-server/internal/core/domain"
	"github.com/userhub/auth-server/internal/core/security"
	"github.com/userhub/auth-server/internal/core/service"
	redisguard "github.com/userhub/auth-server/internal/infrastructure/db/redis"
	"github.com/userhub/auth-server/internal/infrastructure/queue"
	"github.com/userhub/auth-server/internal/pkg/config"
	"github.com/userhub/auth-server/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Pretty:  cfg.Log.Pretty,
		Service: "auth-server",
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	signer, err := security.NewJWTSigner(security.TokenConfig{
		Secret:   cfg.JWT.Key,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			log.Error().Msg("JWT_KEY is not set")
		}
		return err
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	checks := map[string]handler.Check{}
	if store.ping != nil {
		checks[cfg.StoreDriver] = store.ping
	}

	opts := []service.Option{}

	if cfg.Redis.Enabled {
		rdb, err := redisguard.Connect(ctx, redisguard.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		guard := redisguard.NewRefreshGuard(rdb, redisguard.DefaultClaimTTL)
		opts = append(opts, service.WithRefreshGuard(guard))
		checks["redis"] = guard.Ping
		log.Info().Str("addr", cfg.Redis.Addr).Msg("refresh guard enabled")
	}

	if store.audit != nil {
		dispatcher := queue.NewDispatcher(cfg.AuditWorkers, store.audit, log.With().Str("component", "audit").Logger())
		// Workers outlive the signal so Stop can drain queued events.
		dispatcher.Start(context.WithoutCancel(ctx))
		defer dispatcher.Stop()
		opts = append(opts, service.WithEventPublisher(dispatcher))
	}

	credentials := service.NewCredentialService(
		store.users,
		security.NewBcryptHasher(cfg.BcryptCost),
		signer,
		security.NewRefreshTokenGenerator(),
		log.With().Str("component", "credentials").Logger(),
		opts...,
	)

	e := api.NewRouter(api.Dependencies{
		Credentials: credentials,
		Tokens:      signer,
		Checks:      checks,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
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

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
