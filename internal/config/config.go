// Package config loads barstock settings from defaults, an optional
// barstock.yaml, a .env file and BARSTOCK_ environment variables, in
// increasing order of precedence. Command-line flags override all of them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all barstock settings.
type Config struct {
	DBPath      string
	LogPath     string
	LogLevel    slog.Level
	SeedOnStart bool
	CacheSize   int
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile, when set, is read instead of searching for barstock.yaml.
	ConfigFile string
	// EnvFile is the dotenv file loaded before reading the environment.
	// Empty means ".env". A missing file is not an error.
	EnvFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "barstock.sqlite3")
	v.SetDefault("log_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("seed_on_start", true)
	v.SetDefault("cache_size", 256)
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BARSTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		v.SetConfigName("barstock")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "barstock"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}

	cfg := &Config{
		DBPath:      v.GetString("db_path"),
		LogPath:     v.GetString("log_path"),
		LogLevel:    level,
		SeedOnStart: v.GetBool("seed_on_start"),
		CacheSize:   v.GetInt("cache_size"),
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	return cfg, nil
}
