package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/trflyer/internal/transmission"
)

// Config holds the daemon connection and client-side settings.
type Config struct {
	RPCURL    string
	Username  string
	Password  string
	PollEvery time.Duration
	Timeout   time.Duration
	LogFile   string
	LogLevel  string
	RateLimit float64
	RateBurst int
}

const (
	defaultConfigPath = "~/.config/trflyer/config.toml"
	defaultLogFile    = "~/.local/state/trflyer/trflyer.log"
	defaultLogLevel   = "info"
	defaultPoll       = 2 * time.Second
	defaultTimeout    = 10 * time.Second
	defaultRateBurst  = 4

	// EnvRPCURL overrides rpc_url.
	EnvRPCURL = "TRFLYER_RPC_URL"
	// EnvAuth overrides username and password, formatted as user:pass.
	EnvAuth = "TRFLYER_AUTH"
)

type fileConfig struct {
	RPCURL         string  `toml:"rpc_url"`
	Username       string  `toml:"username"`
	Password       string  `toml:"password"`
	PollSeconds    int     `toml:"poll_seconds"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	LogFile        string  `toml:"log_file"`
	LogLevel       string  `toml:"log_level"`
	RateLimit      float64 `toml:"rate_limit"`
	RateBurst      int     `toml:"rate_burst"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		RPCURL:    transmission.DefaultURL,
		PollEvery: defaultPoll,
		Timeout:   defaultTimeout,
		LogFile:   mustExpand(defaultLogFile),
		LogLevel:  defaultLogLevel,
		RateBurst: defaultRateBurst,
	}
}

// Load reads the config file at path (or the default location), falling back
// to defaults when it is missing, then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		applyEnv(&cfg)
		return cfg, nil
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := merge(&cfg, raw); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func merge(cfg *Config, raw fileConfig) error {
	if v := strings.TrimSpace(raw.RPCURL); v != "" {
		cfg.RPCURL = v
	}
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.Password = raw.Password
	if raw.PollSeconds < 0 || raw.TimeoutSeconds < 0 {
		return fmt.Errorf("parse config: durations must not be negative")
	}
	if raw.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		expanded, err := expandPath(v)
		if err != nil {
			return fmt.Errorf("log_file: %w", err)
		}
		cfg.LogFile = expanded
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.RateLimit = raw.RateLimit
	if raw.RateBurst > 0 {
		cfg.RateBurst = raw.RateBurst
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvRPCURL)); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv(EnvAuth); v != "" {
		user, pass, _ := strings.Cut(v, ":")
		cfg.Username = user
		cfg.Password = pass
	}
}

// HasAuth reports whether basic auth credentials are configured.
func (c Config) HasAuth() bool {
	return c.Username != ""
}

// ClientOptions translates the config into transmission client options.
func (c Config) ClientOptions() []transmission.Option {
	opts := []transmission.Option{transmission.WithURL(c.RPCURL)}
	if c.HasAuth() {
		opts = append(opts, transmission.WithAuth(c.Username, c.Password))
	}
	if c.RateLimit > 0 {
		opts = append(opts, transmission.WithRateLimit(c.RateLimit, c.RateBurst))
	}
	return opts
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
