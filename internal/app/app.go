// Package app wires the server together from configuration.
package app

import (
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/config"
)

type App struct {
	logger zerolog.Logger
	cfg    *config.Config
	pgPool *pgxpool.Pool
}

// New returns an App logging JSON to stdout until
// MustInitApplicationLogger switches to the configured output.
func New() *App {
	zerolog.TimestampFieldName = "timestamp"

	logger := zerolog.New(os.Stdout).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()

	logger.Info().Msg("initialized default logger")
	return &App{logger: logger}
}
