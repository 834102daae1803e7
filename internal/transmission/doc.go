// Package transmission provides a client for the Transmission daemon's
// JSON-RPC-over-HTTP protocol.
//
// # Overview
//
// Every call is a POST of a JSON envelope to a single endpoint
// (http://127.0.0.1:9091/transmission/rpc by default):
//
//	{"method": "torrent-get", "arguments": {"fields": ["id", "name"]}}
//
// and the daemon answers with
//
//	{"result": "success", "arguments": {"torrents": [...]}}
//
// A result other than "success" is the daemon's error message. A missing
// result is accepted as success, since some daemon builds omit it.
//
// # Session Handshake
//
// The daemon requires an X-Transmission-Session-Id header and answers 409
// Conflict when it is missing or stale, handing out the current token in
// the same header of the 409 response. Client.Send caches that token and
// resends the identical body once. A second 409 is returned to the caller
// as a DaemonError; there is no retry loop.
//
// # Requests and Responses
//
// Requests are immutable builder values:
//
//	req := transmission.NewTorrentGet().
//		WithIDs(1, 2).
//		WithFields(transmission.FieldID, transmission.FieldName)
//	list, err := client.GetTorrents(ctx, req)
//
// Each With* method returns a modified copy. Options the caller never set
// are absent from the payload rather than sent as null. Empty id or field
// lists mean "no restriction".
//
// Responses implement Response.DecodeArguments. Torrent records are decoded
// through the field catalog in fields.go: each attribute is optional, an
// absent attribute stays nil, and an attribute of the wrong JSON kind fails
// with a DecodeError naming the expected kind and the wire key.
//
// # Errors
//
// Every failure is one of four types, checked with errors.As:
//
//   - *TransportError: the HTTP exchange failed, or a 409 carried no token
//   - *DecodeError: malformed JSON, a missing field, or a field of the wrong kind
//   - *DaemonError: a non-200 status, or a result other than "success"
//   - *EncodeError: the request's arguments could not be built
//
// # Concurrency
//
// Calls are synchronous: one logical call is one or two sequential HTTP
// exchanges. The session token is guarded by a mutex, but renegotiation is
// read-then-write, so overlapping rejected calls may overwrite each other's
// fresh token. The loser pays one extra round trip on its next call.
package transmission
