package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/trflyer/internal/transmission"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "session",
		Short:         "Show daemon version and session settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          showSession,
	}
	cmd.Flags().Bool("raw", false, "Print every session key the daemon returned")
	return cmd
}

func showSession(cmd *cobra.Command, _ []string) error {
	out := newOutputFormatter(cmd)
	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := callContext(cmd)
	defer cancel()

	info, err := client.GetSession(ctx)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	raw, _ := cmd.Flags().GetBool("raw")
	if raw {
		if out.jsonMode {
			return out.Print(info.Raw)
		}
		w := tabwriter.NewWriter(out.out, 0, 4, 2, ' ', 0)
		for _, key := range sortedKeys(info.Raw) {
			fmt.Fprintf(w, "%s\t%v\n", key, info.Raw[key])
		}
		return w.Flush()
	}

	if out.jsonMode {
		return out.Print(map[string]any{
			"url":               client.URL(),
			"version":           info.Version,
			"rpcVersion":        info.RPCVersion,
			"rpcVersionMinimum": info.RPCVersionMinimum,
			"downloadDir":       info.DownloadDir,
			"sessionId":         info.SessionID,
		})
	}

	w := tabwriter.NewWriter(out.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "URL:\t%s\n", client.URL())
	fmt.Fprintf(w, "Version:\t%s\n", orDash(info.Version))
	fmt.Fprintf(w, "RPC version:\t%d (minimum %d)\n", info.RPCVersion, info.RPCVersionMinimum)
	fmt.Fprintf(w, "Download dir:\t%s\n", orDash(info.DownloadDir))
	return w.Flush()
}

func newFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "fields",
		Short:         "List the torrent attributes 'list --fields' accepts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          listFieldCatalog,
	}
}

func listFieldCatalog(cmd *cobra.Command, _ []string) error {
	out := newOutputFormatter(cmd)
	fields := transmission.AllFields()

	if out.jsonMode {
		rows := make([]map[string]string, 0, len(fields))
		for _, f := range fields {
			rows = append(rows, map[string]string{"key": f.Key(), "type": f.Kind().JSONKind()})
		}
		return out.Print(rows)
	}

	w := tabwriter.NewWriter(out.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE")
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%s\n", f.Key(), f.Kind().JSONKind())
	}
	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
