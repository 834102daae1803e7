package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/trflyer/internal/app"
	"github.com/five82/trflyer/internal/config"
	"github.com/five82/trflyer/internal/logging"
	"github.com/five82/trflyer/internal/transmission"
)

const appName = "trctl"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Control a Transmission daemon over RPC",
		Long: `trctl sends one-shot RPC calls to a Transmission daemon.

It reads the same config file as trflyer; --url and the TRFLYER_RPC_URL and
TRFLYER_AUTH environment variables override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Config file path (default ~/.config/trflyer/config.toml)")
	root.PersistentFlags().String("url", "", "Daemon RPC URL (overrides config)")
	root.PersistentFlags().Bool("json", false, "Output in JSON format")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log RPC exchanges to stderr")
	root.PersistentFlags().Duration("timeout", 0, "Per-call timeout (default from config)")

	root.AddCommand(
		newListCommand(),
		newAddCommand(),
		newActionCommand(transmission.ActionStart, "Start torrents"),
		newActionCommand(transmission.ActionStartNow, "Start torrents, bypassing the queue"),
		newActionCommand(transmission.ActionStop, "Stop torrents"),
		newActionCommand(transmission.ActionVerify, "Verify local data of torrents"),
		newActionCommand(transmission.ActionReannounce, "Reannounce torrents to their trackers"),
		newRemoveCommand(),
		newSetCommand(),
		newSessionCommand(),
		newFieldsCommand(),
	)
	return root
}

// clientFromFlags builds an RPC client from the config file and the root
// persistent flags.
func clientFromFlags(cmd *cobra.Command) (*transmission.Client, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.RPCURL = url
	}
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		cfg.Timeout = timeout
	}

	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log := logging.Console(cmd.ErrOrStderr(), level, appName)

	client, err := app.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init rpc client: %w", err)
	}
	return client, nil
}

// callContext bounds one command. The HTTP client carries the per-request
// timeout; this only guards the whole command.
func callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, 2*time.Minute)
}
