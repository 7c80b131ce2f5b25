// Package config loads server configuration from the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// AppName is the server name reported to clients.
	AppName = "planka-mcp"

	// EnvURL is the Planka base URL.
	EnvURL = "PLANKA_URL"

	// EnvToken is a static bearer token.
	EnvToken = "PLANKA_TOKEN"

	// EnvEmail and EnvPassword are login credentials, used when no token is set.
	EnvEmail    = "PLANKA_EMAIL"
	EnvPassword = "PLANKA_PASSWORD"

	// EnvLogLevel is the log level (debug, info, warn, error).
	EnvLogLevel = "PLANKA_LOG_LEVEL"

	// DefaultEnvFile is loaded from the working directory when present.
	DefaultEnvFile = ".env"
)

// ErrConfig marks every configuration failure.
var ErrConfig = errors.New("configuration error")

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Config holds the settings needed to reach Planka.
type Config struct {
	// BaseURL is the Planka server root. API paths are resolved against it.
	BaseURL *url.URL

	// Token is a static bearer token. When empty, Email and Password are used.
	Token string

	// Email and Password authenticate against /api/access-tokens.
	Email    string
	Password string

	// LogLevel is the minimum level written to stderr.
	LogLevel slog.Level
}

// Load reads configuration through lookup. A nil lookup reads the process environment.
// Empty values are treated as unset.
func Load(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	raw := get(EnvURL)
	if raw == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrConfig, EnvURL)
	}
	base, err := ParseBaseURL(raw)
	if err != nil {
		return nil, err
	}

	cfg := &Config{BaseURL: base, LogLevel: slog.LevelInfo}

	if level := get(EnvLogLevel); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("%w: invalid %s %q", ErrConfig, EnvLogLevel, level)
		}
	}

	if token := get(EnvToken); token != "" {
		cfg.Token = token
		return cfg, nil
	}

	cfg.Email = get(EnvEmail)
	if cfg.Email == "" {
		return nil, fmt.Errorf("%w: %s or %s must be set", ErrConfig, EnvToken, EnvEmail)
	}
	// Passwords are used verbatim.
	cfg.Password, _ = lookup(EnvPassword)
	if cfg.Password == "" {
		return nil, fmt.Errorf("%w: %s must be set when using %s", ErrConfig, EnvPassword, EnvEmail)
	}
	return cfg, nil
}

// ParseBaseURL parses an absolute http(s) URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", ErrConfig, EnvURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid %s: %q is not an absolute URL", ErrConfig, EnvURL, raw)
	}
	return u, nil
}

// UsesLogin reports whether the token must be obtained with email and password.
func (c *Config) UsesLogin() bool {
	return c.Token == ""
}

// LoadEnvFile loads variables from path into the process environment.
// Variables that are already set keep their value. An empty path loads
// DefaultEnvFile if it exists; an explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load(DefaultEnvFile)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: loading %s: %v", ErrConfig, DefaultEnvFile, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: loading %s: %v", ErrConfig, path, err)
	}
	return nil
}
