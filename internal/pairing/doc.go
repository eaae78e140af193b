// Package pairing links this application to a media server account.
//
// A [Flow] requests a PIN from plex.tv, sends the user to the approval page, and polls
// the PIN until it is approved or the pairing deadline passes. The approved token is
// then used to discover servers; the user picks one and the resulting credentials are
// saved. Saving is the only durable effect of a pairing attempt.
//
//	Idle -> Requesting -> AwaitingApproval -> ServerDiscovery -> Complete
//	                 \               \                  \
//	                  Failed          Failed | TimedOut  Failed
//
// Polling runs in its own goroutine driven by a ticker. Its cancel func is held on the
// flow and invoked when a token arrives, when the deadline passes, when the caller's
// context ends, or on [Flow.Abort]. Run does not return until the poller has exited, so
// no PIN check is issued after Run returns.
//
// [SelectConnection] picks one address per server: a local connection, else a direct
// (non-relay) one, else the first advertised.
package pairing
