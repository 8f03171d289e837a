package config

import (
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
)

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadLocal reads the client configuration from the YAML file at path, with
// environment variables taking precedence. An empty path reads the
// environment only. A missing SQLite path falls back to DefaultSQLitePath.
func ReadLocal(path string) (*LocalConfig, error) {
	cfg := new(LocalConfig)

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}

	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path, err = DefaultSQLitePath()
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func DefaultSQLitePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "todochat", "todochat.db"), nil
}
