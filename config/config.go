// Package config loads otpvault settings from the environment and an optional
// .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/fahmaliyi/otpvault/vault"
)

const (
	AppDir          = ".otpvault"
	DefaultFileName = "otpvault.dat"
)

type Config struct {
	// Dir holds the container; empty means ~/.otpvault.
	Dir       string `env:"OTPVAULT_DIR"`
	File      string `env:"OTPVAULT_FILE" envDefault:"otpvault.dat"`
	Digits    int    `env:"OTPVAULT_DIGITS" envDefault:"6"`
	LogLevel  string `env:"OTPVAULT_LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"OTPVAULT_LOG_FORMAT" envDefault:"text"`
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.Digits < 0 {
		return nil, fmt.Errorf("config: OTPVAULT_DIGITS must not be negative, got %d", cfg.Digits)
	}
	return &cfg, nil
}

// VaultPath resolves the container path.
func (c *Config) VaultPath() (string, error) {
	dir := c.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return "", vault.ErrHomeDirNotFound
		}
		dir = filepath.Join(home, AppDir)
	}
	name := c.File
	if name == "" {
		name = DefaultFileName
	}
	return filepath.Join(dir, name), nil
}
