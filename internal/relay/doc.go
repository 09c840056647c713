// Package relay provides an HTTP/WebSocket implementation of the
// domain.RelayClient interface.
//
// The relay is a store-and-forward service for encrypted envelopes and
// pre-key bundles between peers. This package offers a concrete client for
// talking to it.
//
// Supported operations include:
//   - Publishing a pre-key bundle registration to the relay.
//   - Fetching a peer's current pre-key bundle.
//   - Sending an envelope to a peer via the relay.
//   - Opening a live WebSocket stream of envelopes for a recipient.
//
// Request/response RPCs are JSON over HTTP; message retrieval is a
// WebSocket stream. All methods accept a context for cancellation and
// deadlines. Non-2xx statuses are returned as errors with the HTTP method,
// request path, and status text to aid diagnostics.
package relay
