package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/userhub/auth-server/internal/api/handler"
	"github.com/userhub/auth-server/internal/core/ports"
	"github.com/userhub/auth-server/internal/infrastructure/db/memory"
	"github.com/userhub/auth-server/internal/infrastructure/db/mongo"
	"github.com/userhub/auth-server/internal/infrastructure/db/postgres"
	"github.com/userhub/auth-server/internal/pkg/config"
)

// storage is the selected session store plus its optional audit sink.
type storage struct {
	users ports.UserRepository
	audit ports.AuditRepository
	ping  handler.Check
	close func()
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "auth-server"})
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &storage{
			users: s.Users,
			audit: s.Audit,
			ping:  s.Users.Ping,
			close: func() {
				if err := s.Close(context.Background()); err != nil {
					log.Warn().Err(err).Msg("mongodb disconnect failed")
				}
			},
		}, nil

	case config.DriverPostgres:
		s, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres, migrations applied")
		return &storage{
			users: s.Users,
			audit: s.Audit,
			ping:  s.Users.Ping,
			close: func() {
				if err := s.Close(); err != nil {
					log.Warn().Err(err).Msg("postgres close failed")
				}
			},
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		return &storage{users: memory.NewUserRepository(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
