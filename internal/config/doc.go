// Package config loads trflyer's TOML configuration.
//
// # Resolution
//
//  1. An explicit path wins; otherwise ~/.config/trflyer/config.toml is used.
//  2. A missing file is not an error: defaults apply.
//  3. Empty or blank values fall back to their defaults.
//  4. TRFLYER_RPC_URL and TRFLYER_AUTH (user:pass) override the file.
//
// # Format
//
//	rpc_url = "http://127.0.0.1:9091/transmission/rpc"
//	username = "admin"
//	password = "secret"
//	poll_seconds = 2
//	timeout_seconds = 10
//	log_file = "~/.local/state/trflyer/trflyer.log"
//	log_level = "info"
//	rate_limit = 0      # RPC calls per second, 0 disables
//	rate_burst = 4
//
// Every key is optional. rpc_url may be a bare host:port; the client fills in
// the scheme and the /transmission/rpc path. Tilde paths are expanded.
package config
