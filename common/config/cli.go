package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LoadCLI loads configuration for the sgadmin CLI.
// An empty path resolves to DefaultPath. A missing file is not an error.
// Precedence: SGADMIN_* environment (optionally from ./.env), config file, defaults.
// Environment overrides apply to the returned values only; Save writes back the
// file contents and never the overrides.
func LoadCLI(path string) (*CLIConfig, error) {
	loadDotEnv(".env")

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	defaults := DefaultCLI()

	v := viper.New()
	v.SetDefault("current_profile", defaults.CurrentProfile)
	v.SetDefault("defaults.base_url", defaults.Defaults.BaseURL)
	v.SetDefault("session.backend", defaults.Session.Backend)
	v.SetDefault("session.redis_url", defaults.Session.RedisURL)
	v.SetDefault("session.key_prefix", defaults.Session.KeyPrefix)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SGADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Nested keys need explicit bindings; the short forms are what operators type.
	_ = v.BindEnv("defaults.base_url", "SGADMIN_BASE_URL", "SGADMIN_DEFAULTS_BASE_URL")
	_ = v.BindEnv("session.backend", "SGADMIN_SESSION_BACKEND")
	_ = v.BindEnv("session.redis_url", "SGADMIN_REDIS_URL", "SGADMIN_SESSION_REDIS_URL")
	_ = v.BindEnv("session.key_prefix", "SGADMIN_SESSION_KEY_PREFIX")
	_ = v.BindEnv("logging.level", "SGADMIN_LOG_LEVEL", "SGADMIN_LOGGING_LEVEL")
	_ = v.BindEnv("logging.format", "SGADMIN_LOG_FORMAT", "SGADMIN_LOGGING_FORMAT")

	file := DefaultCLI()
	if data, err := os.ReadFile(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, file); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	file.normalize()

	cfg := defaults
	cfg.path = path
	cfg.file = file

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// loadDotEnv populates unset variables from a dotenv file when one exists.
func loadDotEnv(file string) {
	if _, err := os.Stat(file); err != nil {
		return
	}
	_ = godotenv.Load(file)
}
