package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/trflyer/internal/transmission"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvAuth, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RPCURL != transmission.DefaultURL {
		t.Fatalf("RPCURL = %q, want %q", cfg.RPCURL, transmission.DefaultURL)
	}
	if cfg.PollEvery != defaultPoll || cfg.Timeout != defaultTimeout {
		t.Fatalf("PollEvery/Timeout = %v/%v, want %v/%v", cfg.PollEvery, cfg.Timeout, defaultPoll, defaultTimeout)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.HasAuth() {
		t.Fatalf("HasAuth = true, want false")
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvAuth, "")

	path := writeConfig(t, `
rpc_url = "  http://nas:9091/transmission/rpc  "
username = " admin "
password = "s3cret"
poll_seconds = 5
timeout_seconds = 3
log_file = "  ~/logs/tr.log  "
log_level = "DEBUG"
rate_limit = 2.5
rate_burst = 6
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RPCURL != "http://nas:9091/transmission/rpc" {
		t.Fatalf("RPCURL = %q", cfg.RPCURL)
	}
	if cfg.Username != "admin" || cfg.Password != "s3cret" {
		t.Fatalf("auth = %q/%q, want admin/s3cret", cfg.Username, cfg.Password)
	}
	if cfg.PollEvery != 5*time.Second || cfg.Timeout != 3*time.Second {
		t.Fatalf("PollEvery/Timeout = %v/%v", cfg.PollEvery, cfg.Timeout)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.RateLimit != 2.5 || cfg.RateBurst != 6 {
		t.Fatalf("rate = %v/%d, want 2.5/6", cfg.RateLimit, cfg.RateBurst)
	}
	if got := len(cfg.ClientOptions()); got != 3 {
		t.Fatalf("ClientOptions = %d options, want 3", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvRPCURL, "http://override:9091/transmission/rpc")
	t.Setenv(EnvAuth, "alice:pa:ss")

	cfg, err := Load(writeConfig(t, `rpc_url = "http://file:9091/transmission/rpc"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RPCURL != "http://override:9091/transmission/rpc" {
		t.Fatalf("RPCURL = %q, want env override", cfg.RPCURL)
	}
	if cfg.Username != "alice" || cfg.Password != "pa:ss" {
		t.Fatalf("auth = %q/%q, want alice/pa:ss", cfg.Username, cfg.Password)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvRPCURL, "")
	t.Setenv(EnvAuth, "")

	cfg, err := Load(writeConfig(t, `
rpc_url = "   "
log_level = ""
poll_seconds = 0
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RPCURL != transmission.DefaultURL {
		t.Fatalf("RPCURL = %q, want default", cfg.RPCURL)
	}
	if cfg.LogLevel != defaultLogLevel || cfg.PollEvery != defaultPoll {
		t.Fatalf("LogLevel/PollEvery = %q/%v, want defaults", cfg.LogLevel, cfg.PollEvery)
	}
	if cfg.RateLimit != 0 || cfg.RateBurst != defaultRateBurst {
		t.Fatalf("rate = %v/%d, want 0/%d", cfg.RateLimit, cfg.RateBurst, defaultRateBurst)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	tests := map[string]string{
		"syntax":   `rpc_url = [`,
		"negative": `poll_seconds = -1`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Fatalf("Load returned nil error, want parse error")
			}
			if !strings.Contains(err.Error(), "parse config") {
				t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}
