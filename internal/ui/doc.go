// Package ui provides the terminal monitor for trflyer.
//
// The interface is a Bubble Tea program. It renders a header with daemon
// and transfer totals, a sortable torrent table, a detail pane for the
// selected torrent, and a log view that tails trflyer's own zerolog file.
//
// # Data Flow
//
//  1. app.Poller writes snapshots into state.Store.
//  2. A tick message copies the latest snapshot into the Model and re-sorts
//     the rows, keeping the cursor on the same torrent id.
//  3. Action keys run torrent-start, torrent-stop, torrent-verify,
//     torrent-reannounce or torrent-set through a transmission.TorrentController
//     as tea.Cmds, then nudge the poller so the change shows up on the next
//     tick.
//
// Theme and sort changes are written to the prefs file as they happen.
//
// # Key Bindings
//
//   - j/k, g/G: move the selection
//   - s, x, v, r: start, stop, verify, reannounce the selected torrent
//   - a, A: start or stop every torrent
//   - +/-: raise or lower bandwidth priority
//   - o: cycle sort order
//   - T: cycle theme
//   - l or Tab: toggle the log view
//   - R: poll now
//   - ?: full help
//   - q: quit
package ui
