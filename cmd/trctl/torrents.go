package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/five82/trflyer/internal/transmission"
)

var listFields = []transmission.Field{
	transmission.FieldID,
	transmission.FieldName,
	transmission.FieldStatus,
	transmission.FieldError,
	transmission.FieldPercentDone,
	transmission.FieldSizeWhenDone,
	transmission.FieldRateDownload,
	transmission.FieldRateUpload,
	transmission.FieldUploadRatio,
	transmission.FieldETA,
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "list [torrents...]",
		Short:         "List torrents",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          listTorrents,
	}
	cmd.Flags().StringSlice("fields", nil, "Attributes to fetch by wire key (see 'trctl fields')")
	return cmd
}

func listTorrents(cmd *cobra.Command, args []string) error {
	out := newOutputFormatter(cmd)

	sel := transmission.AllTorrents()
	if len(args) > 0 {
		var err error
		if sel, err = parseSelector(args); err != nil {
			return err
		}
	}

	keys, _ := cmd.Flags().GetStringSlice("fields")
	fields, err := parseFieldKeys(keys)
	if err != nil {
		return err
	}
	custom := len(fields) > 0
	if !custom {
		fields = listFields
	}

	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := callContext(cmd)
	defer cancel()

	list, err := client.GetTorrents(ctx, transmission.NewTorrentGet().WithSelector(sel).WithFields(fields...))
	if err != nil {
		return fmt.Errorf("list torrents: %w", err)
	}

	if out.jsonMode {
		rows := make([]map[string]any, 0, len(list.Torrents))
		for i := range list.Torrents {
			rows = append(rows, list.Torrents[i].Values(fields...))
		}
		data := map[string]any{"torrents": rows}
		if list.Removed != nil {
			data["removed"] = list.Removed
		}
		return out.Print(data)
	}

	w := tabwriter.NewWriter(out.out, 0, 4, 2, ' ', 0)
	if custom {
		writeFieldTable(w, list.Torrents, fields)
	} else {
		writeTorrentTable(w, list.Torrents)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(list.Removed) > 0 {
		fmt.Fprintf(out.out, "Removed: %v\n", list.Removed)
	}
	return nil
}

func parseFieldKeys(keys []string) ([]transmission.Field, error) {
	fields := make([]transmission.Field, 0, len(keys))
	for _, key := range keys {
		f, ok := transmission.ParseField(key)
		if !ok {
			return nil, fmt.Errorf("unknown field %q (see 'trctl fields')", key)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func writeTorrentTable(w *tabwriter.Writer, torrents []transmission.Torrent) {
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDONE\tSIZE\tDOWN\tUP\tRATIO\tETA")
	for i := range torrents {
		t := &torrents[i]
		status := "-"
		if t.Status != nil {
			status = t.Status.String()
		}
		if t.Error != nil && *t.Error != 0 {
			status = "error"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			intOr(t.ID, "-"),
			t.DisplayName(),
			status,
			percent(t.PercentDone),
			bytesOr(t.SizeWhenDone, ""),
			bytesOr(t.RateDownload, "/s"),
			bytesOr(t.RateUpload, "/s"),
			ratio(t.UploadRatio),
			eta(t.ETA),
		)
	}
}

func writeFieldTable(w *tabwriter.Writer, torrents []transmission.Torrent, fields []transmission.Field) {
	fmt.Fprintln(w, strings.Join(transmission.FieldKeys(fields), "\t"))
	for i := range torrents {
		cells := make([]string, len(fields))
		for j, f := range fields {
			cells[j] = "-"
			if v, ok := torrents[i].Value(f); ok {
				cells[j] = formatValue(v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case []string:
		return strings.Join(v, ",")
	case fmt.Stringer:
		return v.String()
	case []transmission.File, []transmission.FileStat, []transmission.Peer, []transmission.Tracker:
		return fmt.Sprintf("%d entries", sliceLen(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sliceLen(v any) int {
	switch v := v.(type) {
	case []transmission.File:
		return len(v)
	case []transmission.FileStat:
		return len(v)
	case []transmission.Peer:
		return len(v)
	case []transmission.Tracker:
		return len(v)
	}
	return 0
}

func intOr(p *int64, fallback string) string {
	if p == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *p)
}

func percent(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *p*100)
}

func bytesOr(p *int64, suffix string) string {
	if p == nil || *p < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(*p)) + suffix
}

func ratio(p *float64) string {
	switch {
	case p == nil || *p == -1:
		return "-"
	case *p == -2:
		return "inf"
	default:
		return fmt.Sprintf("%.2f", *p)
	}
}

func eta(p *int64) string {
	if p == nil || *p < 0 {
		return "-"
	}
	return (time.Duration(*p) * time.Second).String()
}

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <file|url|magnet>",
		Short: "Add a torrent",
		Long: `Add a torrent from a local .torrent file, or let the daemon fetch it from
a URL, magnet link or a path on the daemon's host.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          addTorrent,
	}
	cmd.Flags().Bool("paused", false, "Add without starting")
	cmd.Flags().String("download-dir", "", "Download directory on the daemon's host")
	cmd.Flags().Int64("peer-limit", 0, "Maximum number of peers")
	cmd.Flags().String("priority", "", "Bandwidth priority (low|normal|high)")
	cmd.Flags().StringSlice("label", nil, "Label to attach (repeatable)")
	return cmd
}

func addTorrent(cmd *cobra.Command, args []string) error {
	out := newOutputFormatter(cmd)

	req, err := addRequest(args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("paused") {
		paused, _ := flags.GetBool("paused")
		req = req.WithPaused(paused)
	}
	if dir, _ := flags.GetString("download-dir"); dir != "" {
		req = req.WithDownloadDir(dir)
	}
	if flags.Changed("peer-limit") {
		limit, _ := flags.GetInt64("peer-limit")
		req = req.WithPeerLimit(limit)
	}
	if raw, _ := flags.GetString("priority"); raw != "" {
		p, ok := transmission.ParsePriority(raw)
		if !ok {
			return fmt.Errorf("invalid priority %q (want low, normal or high)", raw)
		}
		req = req.WithBandwidthPriority(p)
	}
	if labels, _ := flags.GetStringSlice("label"); len(labels) > 0 {
		req = req.WithLabels(labels...)
	}

	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := callContext(cmd)
	defer cancel()

	added, err := client.AddTorrent(ctx, req)
	if err != nil {
		return fmt.Errorf("add torrent: %w", err)
	}

	msg := fmt.Sprintf("Added torrent %d: %s", added.ID, added.Name)
	if added.Duplicate {
		msg = fmt.Sprintf("Torrent already present as %d: %s", added.ID, added.Name)
	}
	return out.Success(msg, map[string]any{
		"id":         added.ID,
		"name":       added.Name,
		"hashString": added.HashString,
		"duplicate":  added.Duplicate,
	})
}

// addRequest sends local files as metainfo and hands anything else to the
// daemon to resolve.
func addRequest(source string) (transmission.TorrentAdd, error) {
	info, err := os.Stat(source)
	switch {
	case err == nil && info.Mode().IsRegular():
		return transmission.NewTorrentAddFromFile(source)
	case err == nil:
		return transmission.TorrentAdd{}, fmt.Errorf("%s is not a regular file", source)
	case errors.Is(err, os.ErrNotExist):
		return transmission.NewTorrentAddFromSource(source), nil
	default:
		return transmission.TorrentAdd{}, fmt.Errorf("stat %s: %w", source, err)
	}
}

func newActionCommand(action transmission.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:           strings.ReplaceAll(action.String(), " ", "-") + " <torrents...|all|recent>",
		Short:         short,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, action, args)
		},
	}
}

func runAction(cmd *cobra.Command, action transmission.Action, args []string) error {
	out := newOutputFormatter(cmd)
	sel, err := parseSelector(args)
	if err != nil {
		return err
	}
	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := callContext(cmd)
	defer cancel()

	if err := client.RunAction(ctx, action, sel); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return out.Success(fmt.Sprintf("%s: ok", action), map[string]any{"action": action.String()})
}

func newRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "remove <torrents...|all>",
		Short:         "Remove torrents from the daemon",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          removeTorrents,
	}
	cmd.Flags().Bool("delete-data", false, "Also delete downloaded data")
	cmd.Flags().Bool("force", false, "Allow removing every torrent")
	return cmd
}

func removeTorrents(cmd *cobra.Command, args []string) error {
	out := newOutputFormatter(cmd)
	sel, err := parseSelector(args)
	if err != nil {
		return err
	}
	if force, _ := cmd.Flags().GetBool("force"); sel.IsAll() && !force {
		return errors.New("refusing to remove all torrents without --force")
	}
	deleteData, _ := cmd.Flags().GetBool("delete-data")

	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := callContext(cmd)
	defer cancel()

	req := transmission.NewTorrentRemove(sel).WithDeleteLocalData(deleteData)
	if err := client.RemoveTorrents(ctx, req); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return out.Success("remove: ok", map[string]any{"deleteLocalData": deleteData})
}

func newSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <torrents...|all>",
		Short: "Change per-torrent settings",
		Example: `  trctl set 3 --download-limit 500
  trctl set all --upload-limit -1
  trctl set 3,4 --priority high --label linux --label iso`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          setTorrents,
	}
	cmd.Flags().Int64("download-limit", 0, "Download limit in KB/s; negative removes the limit")
	cmd.Flags().Int64("upload-limit", 0, "Upload limit in KB/s; negative removes the limit")
	cmd.Flags().String("priority", "", "Bandwidth priority (low|normal|high)")
	cmd.Flags().String("location", "", "Move data to this directory on the daemon's host")
	cmd.Flags().Int64("peer-limit", 0, "Maximum number of peers")
	cmd.Flags().Int64("queue-position", 0, "Position in the download queue")
	cmd.Flags().Float64("seed-ratio", 0, "Stop seeding at this ratio")
	cmd.Flags().Bool("honor-session-limits", true, "Apply the daemon's global speed limits")
	cmd.Flags().StringSlice("label", nil, "Replace labels (repeatable)")
	cmd.Flags().StringSlice("tracker-add", nil, "Announce URL to add (repeatable)")
	return cmd
}

func setTorrents(cmd *cobra.Command, args []string) error {
	out := newOutputFormatter(cmd)
	sel, err := parseSelector(args)
	if err != nil {
		return err
	}
	req, err := setRequest(cmd, sel)
	if err != nil {
		return err
	}

	client, err := clientFromFlags(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := callContext(cmd)
	defer cancel()

	if err := client.SetTorrents(ctx, req); err != nil {
		return fmt.Errorf("set: %w", err)
	}
	return out.Success("set: ok", nil)
}

// setRequest maps the changed flags onto a torrent-set request.
func setRequest(cmd *cobra.Command, sel transmission.Selector) (transmission.TorrentSet, error) {
	flags := cmd.Flags()
	req := transmission.NewTorrentSet(sel)
	changed := 0

	if flags.Changed("download-limit") {
		changed++
		limit, _ := flags.GetInt64("download-limit")
		if limit < 0 {
			req = req.WithDownloadLimited(false)
		} else {
			req = req.WithDownloadLimit(limit).WithDownloadLimited(true)
		}
	}
	if flags.Changed("upload-limit") {
		changed++
		limit, _ := flags.GetInt64("upload-limit")
		if limit < 0 {
			req = req.WithUploadLimited(false)
		} else {
			req = req.WithUploadLimit(limit).WithUploadLimited(true)
		}
	}
	if flags.Changed("priority") {
		changed++
		raw, _ := flags.GetString("priority")
		p, ok := transmission.ParsePriority(raw)
		if !ok {
			return req, fmt.Errorf("invalid priority %q (want low, normal or high)", raw)
		}
		req = req.WithBandwidthPriority(p)
	}
	if flags.Changed("location") {
		changed++
		location, _ := flags.GetString("location")
		req = req.WithLocation(location)
	}
	if flags.Changed("peer-limit") {
		changed++
		limit, _ := flags.GetInt64("peer-limit")
		req = req.WithPeerLimit(limit)
	}
	if flags.Changed("queue-position") {
		changed++
		pos, _ := flags.GetInt64("queue-position")
		req = req.WithQueuePosition(pos)
	}
	if flags.Changed("seed-ratio") {
		changed++
		r, _ := flags.GetFloat64("seed-ratio")
		// seedRatioMode 1 applies the torrent's own limit.
		req = req.WithSeedRatioLimit(r).WithSeedRatioMode(1)
	}
	if flags.Changed("honor-session-limits") {
		changed++
		honor, _ := flags.GetBool("honor-session-limits")
		req = req.WithHonorsSessionLimits(honor)
	}
	if flags.Changed("label") {
		changed++
		labels, _ := flags.GetStringSlice("label")
		req = req.WithLabels(labels...)
	}
	if flags.Changed("tracker-add") {
		changed++
		urls, _ := flags.GetStringSlice("tracker-add")
		req = req.WithTrackerAdd(urls...)
	}

	if changed == 0 {
		return req, errors.New("nothing to set (see 'trctl set --help')")
	}
	return req, nil
}
