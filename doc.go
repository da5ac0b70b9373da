// The [atdock] package implements an AT Protocol personal data server
// client in the Go way.
//
// # Storage Engines
//
// There are 2 different storage engines, file and XRPC, you can use to
// work with a PDS.
//
// Provide a proper PDS URL to [Open] so that it chooses the right
// engine for you: file URLs select a local directory engine that needs
// no server at all, and https (or loopback http) URLs select the
// network engine that speaks XRPC.
//
// # Sessions
//
// Authenticated repository operations are methods on [Session], which
// [Pds.Login] returns. A session is a logged-in capability for one DID
// on one PDS; it can be shared across goroutines, and on the network
// engine it carries the token pair, refreshable with [Session.Refresh].
//
// # Data Models
//
// Identifiers are validated at construction time: see
// [github.com/atdock/atdock.go/pkg/models] for DIDs, collection NSIDs,
// record keys, at:// URIs, and record values.
//
// # Firehose
//
// [Pds.Firehose] streams repository events. On the file engine it tails
// the local operation log; on the network engine it subscribes over
// websocket, where native binary frames are currently surfaced as
// [models.UnknownEvent] previews rather than decoded commits.
//
// # Lower-level Access
//
// [Pds.Backend] exposes the engine contract directly for callers that
// manage tokens themselves, such as the bundled CLI.
package atdock
