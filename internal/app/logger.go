package app

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/todo-chatbot/internal/config"
)

// ConfigureLogger returns logger writing to w at the level of env. The
// local env gets a human readable console writer.
func ConfigureLogger(logger zerolog.Logger, env string, w io.Writer) (zerolog.Logger, error) {
	switch env {
	case config.EnvDev:
		logger = logger.Level(zerolog.DebugLevel)
	case config.EnvProd:
		logger = logger.Level(zerolog.InfoLevel)
	case config.EnvLocal:
		logger = logger.Level(zerolog.TraceLevel)

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = w
		w = consoleWriter
	default:
		return logger, fmt.Errorf("unknown env: %s", env)
	}

	return logger.Output(w), nil
}

func (a *App) MustInitApplicationLogger(w io.Writer) {
	logger, err := ConfigureLogger(a.logger, a.cfg.Env, w)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("env", a.cfg.Env).
			Msg("unknown env")
		panic(err)
	}

	a.logger = logger
	a.logger.Info().Msg("initialized application logger")
}
