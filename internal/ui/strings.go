package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// truncate shortens a string to limit runes, ending with an ellipsis.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of a long value, such as a download path.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + "…" + string(runes[len(runes)-suffix:])
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if width <= 0 || n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// padLeft right-aligns s in width runes.
func padLeft(s string, width int) string {
	n := len([]rune(s))
	if width <= 0 || n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func formatBytes(n int64) string {
	if n < 0 {
		return "-"
	}
	return humanize.IBytes(uint64(n))
}

func formatRate(bytesPerSec int64) string {
	if bytesPerSec <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytesPerSec)) + "/s"
}

func formatPercent(f float64) string {
	if math.IsNaN(f) || f < 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", math.Min(f, 1)*100)
}

// formatRatio renders an upload ratio; the daemon uses -1 for "no ratio"
// and -2 for "infinite".
func formatRatio(r float64) string {
	switch {
	case r == -2:
		return "∞"
	case r < 0:
		return "-"
	default:
		return fmt.Sprintf("%.2f", r)
	}
}

// formatETA renders seconds remaining; the daemon uses negative values for
// "unknown" and "not available".
func formatETA(seconds int64) string {
	if seconds < 0 {
		return "-"
	}
	return humanizeDuration(time.Duration(seconds) * time.Second)
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

// formatAgo renders a timestamp relative to now using go-humanize.
func formatAgo(t *time.Time) string {
	if t == nil || t.IsZero() || t.Unix() == 0 {
		return "-"
	}
	return humanize.Time(*t)
}
