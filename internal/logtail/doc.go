// Package logtail reads the tail of trflyer's log file for the TUI log view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) however large the file grows. Lines come back in file order.
//
// The log file holds zerolog JSON lines. Parse turns one into an Entry and
// Entry.Format renders it compactly:
//
//	{"level":"debug","component":"rpc","method":"torrent-get","message":"rpc exchange"}
//	DEBUG rpc exchange component=rpc method=torrent-get
//
// Anything that is not a JSON object is shown as-is.
package logtail
