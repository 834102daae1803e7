// Package app provides the orchestration layer for trflyer.
//
// # Overview
//
// This package wires configuration, logging, the RPC client, polling, state
// and the UI together. It is the composition root of the trflyer binary;
// cmd/trctl reuses NewClient so both binaries talk to the daemon the same
// way.
//
// # Data Flow
//
//	Run()
//	  ├─> config.Load()             config file + env overrides
//	  ├─> logging.File()            zerolog JSON file
//	  ├─> NewClient()               transmission.Client
//	  ├─> state.Store{}             shared snapshot
//	  ├─> Poller.Start()            background refresh
//	  └─> ui.Run()                  TUI (blocks)
//
//	Poller loop:
//	  ├─> GetSession()   once, until it succeeds
//	  ├─> GetTorrents()  MonitorFields
//	  └─> store.Update()
//
// # Polling Behavior
//
// The poller polls immediately, then every interval (default 2 seconds).
// Failures are recorded in the store and stretch the wait with exponential
// backoff up to 30 seconds. UI actions call Poller.Refresh to skip the wait.
//
// # Error Handling
//
// Run only fails for startup problems: an unreadable config, a log file that
// cannot be opened, or an invalid RPC URL. An unreachable daemon is not
// fatal; the UI shows it as offline and the poller keeps retrying.
package app
