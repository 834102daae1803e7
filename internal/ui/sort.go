package ui

import (
	"cmp"
	"slices"
	"strings"

	"github.com/five82/trflyer/internal/transmission"
)

type sortMode string

const (
	sortQueue    sortMode = "queue"
	sortName     sortMode = "name"
	sortProgress sortMode = "progress"
	sortDown     sortMode = "down"
	sortUp       sortMode = "up"
	sortRatio    sortMode = "ratio"
)

var sortOrder = []sortMode{sortQueue, sortName, sortProgress, sortDown, sortUp, sortRatio}

func parseSortMode(s string) sortMode {
	for _, m := range sortOrder {
		if string(m) == strings.ToLower(strings.TrimSpace(s)) {
			return m
		}
	}
	return sortQueue
}

func (m sortMode) next() sortMode {
	for i, mode := range sortOrder {
		if mode == m {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return sortQueue
}

// sortTorrents returns a sorted copy. Rates, progress and ratio sort
// descending; ties fall back to id so rows do not jump between polls.
func sortTorrents(in []transmission.Torrent, mode sortMode) []transmission.Torrent {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b transmission.Torrent) int {
		var c int
		switch mode {
		case sortName:
			c = cmp.Compare(strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName()))
		case sortProgress:
			c = cmp.Compare(f64(b.PercentDone), f64(a.PercentDone))
		case sortDown:
			c = cmp.Compare(i64(b.RateDownload), i64(a.RateDownload))
		case sortUp:
			c = cmp.Compare(i64(b.RateUpload), i64(a.RateUpload))
		case sortRatio:
			c = cmp.Compare(f64(b.UploadRatio), f64(a.UploadRatio))
		default:
			c = cmp.Compare(i64(a.QueuePosition), i64(b.QueuePosition))
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(i64(a.ID), i64(b.ID))
	})
	return out
}

func i64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func f64(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
