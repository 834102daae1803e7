package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/five82/trflyer/internal/transmission"
)

const infoHashLen = 40

// parseSelector turns command arguments into a selector. "all" and "recent"
// must stand alone; anything else is a list of numeric ids and info hashes,
// optionally comma separated.
func parseSelector(args []string) (transmission.Selector, error) {
	var tokens []string
	for _, arg := range args {
		for _, tok := range strings.Split(arg, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	if len(tokens) == 0 {
		return transmission.Selector{}, fmt.Errorf("no torrents given (use ids, hashes, \"all\" or \"recent\")")
	}

	if len(tokens) == 1 {
		switch strings.ToLower(tokens[0]) {
		case "all":
			return transmission.AllTorrents(), nil
		case "recent":
			return transmission.RecentlyActive(), nil
		}
	}

	var ids []int64
	var hashes []string
	for _, tok := range tokens {
		switch lower := strings.ToLower(tok); {
		case lower == "all" || lower == "recent":
			return transmission.Selector{}, fmt.Errorf("%q cannot be combined with other torrents", tok)
		case isInfoHash(lower):
			hashes = append(hashes, lower)
		default:
			id, err := strconv.ParseInt(tok, 10, 64)
			if err != nil || id <= 0 {
				return transmission.Selector{}, fmt.Errorf("invalid torrent %q: want a positive id or a 40 character info hash", tok)
			}
			ids = append(ids, id)
		}
	}
	return transmission.Torrents(ids, hashes), nil
}

func isInfoHash(s string) bool {
	if len(s) != infoHashLen {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
