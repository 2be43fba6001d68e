// Package config provides configuration management for the sgadmin client.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProfile  = "default"
	DefaultBaseURL  = "http://localhost:8001"
	SessionFile     = "file"
	SessionRedis    = "redis"
	SessionMemory   = "memory"
	configFileName  = "config.yaml"
	defaultDirName  = ".sgadmin"
	configDirEnvVar = "SGADMIN_CONFIG_DIR"
)

// CLIConfig holds CLI tool configuration (profiles, session tokens, etc.)
type CLIConfig struct {
	CurrentProfile string                 `yaml:"current_profile" mapstructure:"current_profile"`
	Profiles       map[string]*CLIProfile `yaml:"profiles" mapstructure:"profiles"`
	Defaults       *CLIDefaults           `yaml:"defaults" mapstructure:"defaults"`
	Session        SessionConfig          `yaml:"session" mapstructure:"session"`
	Logging        LoggingConfig          `yaml:"logging" mapstructure:"logging"`
	path           string

	// file is the document as read from disk, without environment
	// overrides. Nil for configs not produced by LoadCLI.
	file *CLIConfig
}

// CLIProfile is one SecureGate deployment the operator talks to.
// Token is the persisted session token, stored under the fixed key "token".
type CLIProfile struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token,omitempty" mapstructure:"token"`
}

// CLIDefaults holds values used when a profile does not override them.
type CLIDefaults struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SessionConfig selects where the session token is persisted.
type SessionConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"` // "file" (default), "redis" or "memory"
	RedisURL  string `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultCLI returns a CLIConfig with default values
func DefaultCLI() *CLIConfig {
	return &CLIConfig{
		CurrentProfile: DefaultProfile,
		Profiles:       make(map[string]*CLIProfile),
		Defaults: &CLIDefaults{
			BaseURL: DefaultBaseURL,
		},
		Session: SessionConfig{
			Backend:   SessionFile,
			RedisURL:  "redis://localhost:6379/0",
			KeyPrefix: "sgadmin",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// DefaultPath returns $SGADMIN_CONFIG_DIR/config.yaml, or ~/.sgadmin/config.yaml.
func DefaultPath() (string, error) {
	if dir := os.Getenv(configDirEnvVar); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName, configFileName), nil
}

// Path returns the file the config is saved to.
func (c *CLIConfig) Path() string {
	return c.path
}

func (c *CLIConfig) normalize() {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*CLIProfile)
	}
	if c.Defaults == nil {
		c.Defaults = &CLIDefaults{BaseURL: DefaultBaseURL}
	}
}

// layers returns the effective config followed by the file document, so
// persisted edits reach both.
func (c *CLIConfig) layers() []*CLIConfig {
	if c.file == nil {
		return []*CLIConfig{c}
	}
	return []*CLIConfig{c, c.file}
}

// Save writes the CLI config to disk
func (c *CLIConfig) Save() error {
	if c.path == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = path
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	doc := c
	if c.file != nil {
		doc = c.file
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// GetProfile retrieves a profile by name (or current profile if name is empty)
func (c *CLIConfig) GetProfile(name string) (*CLIProfile, error) {
	if name == "" {
		name = c.CurrentProfile
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}

	return profile, nil
}

// BaseURL returns the service base URL from the profile or the defaults.
func (c *CLIConfig) BaseURL(profile string) string {
	if p, err := c.GetProfile(profile); err == nil && p.BaseURL != "" {
		return p.BaseURL
	}
	if c.Defaults != nil && c.Defaults.BaseURL != "" {
		return c.Defaults.BaseURL
	}
	return DefaultBaseURL
}

// Token returns the token persisted for a profile, "" when there is none.
func (c *CLIConfig) Token(profile string) string {
	p, err := c.GetProfile(profile)
	if err != nil {
		return ""
	}
	return p.Token
}

// SaveToken stores token on the named profile, creating it when needed,
// makes it current and writes the file.
func (c *CLIConfig) SaveToken(name, baseURL, token string) error {
	if name == "" {
		name = c.CurrentProfile
	}

	for _, l := range c.layers() {
		if l.Profiles == nil {
			l.Profiles = make(map[string]*CLIProfile)
		}
		profile, ok := l.Profiles[name]
		if !ok {
			profile = &CLIProfile{}
			l.Profiles[name] = profile
		}
		if baseURL != "" {
			profile.BaseURL = baseURL
		}
		profile.Token = token
		l.CurrentProfile = name
	}

	return c.Save()
}

// ClearToken drops the token of a profile but keeps its endpoint settings.
// Clearing a profile that does not exist is not an error.
func (c *CLIConfig) ClearToken(name string) error {
	if name == "" {
		name = c.CurrentProfile
	}

	changed := false
	for _, l := range c.layers() {
		if profile, ok := l.Profiles[name]; ok && profile.Token != "" {
			profile.Token = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.Save()
}

// RemoveProfile removes a profile from the configuration
func (c *CLIConfig) RemoveProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}

	for _, l := range c.layers() {
		delete(l.Profiles, name)
		if l.CurrentProfile == name {
			l.CurrentProfile = ""
		}
	}

	return c.Save()
}
