package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// ConfigFile pairs a dotenv file with the struct it is decoded into.
type ConfigFile struct {
	// Path of the .env file. Empty means environment only.
	Path string
	// Config must be a pointer to a struct with envconfig tags.
	Config interface{}
}

// LoadConfigFiles loads every file into the process environment and then
// decodes the environment into its struct. A missing file is an error.
func LoadConfigFiles(configFiles ...*ConfigFile) error {
	for _, configFile := range configFiles {
		if configFile.Path != "" {
			if err := godotenv.Load(configFile.Path); err != nil {
				return err
			}
		}
		if err := envconfig.Process("", configFile.Config); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfigs decodes the environment into each struct pointer.
func LoadConfigs(config ...interface{}) error {
	for _, cfg := range config {
		if err := envconfig.Process("", cfg); err != nil {
			return err
		}
	}
	return nil
}

// LoadEnv reads an optional .env file and decodes the environment into cfg.
// Variables already set in the environment win over the file.
func LoadEnv(path string, cfg interface{}, logger *zap.Logger) error {
	if path != "" {
		err := godotenv.Load(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Info("no .env file, using environment only", zap.String("path", path))
		case err != nil:
			return err
		}
	}
	return envconfig.Process("", cfg)
}
