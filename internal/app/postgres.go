package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adanyl0v/todo-chatbot/internal/storage"
)

func (a *App) MustConnectPostgres() {
	cfg := a.cfg.Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	a.pgPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = a.pgPool.Ping(ctx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	a.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
}

func (a *App) MustMigratePostgres() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Postgres.PingTimeout)
	defer cancel()

	err := storage.MigratePostgres(ctx, a.pgPool)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to migrate postgres")
		panic(err)
	}
	a.logger.Info().Msg("migrated postgres")
}

func (a *App) DisconnectPostgres() {
	a.pgPool.Close()
	a.logger.Info().Msg("disconnected from postgres")
}
