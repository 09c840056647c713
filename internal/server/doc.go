// Package server implements the rendezvous relay: an in-memory registry of
// pre-key bundles and per-recipient message queues, exposed over HTTP and
// a WebSocket retrieval stream.
//
// The relay never sees plaintext. It authenticates nothing about message
// content; its job is bundle storage, at-most-once one-time pre-key
// dispensing, and envelope relay/queueing, mirroring the access-logging
// and graceful-shutdown conventions of a plain net/http server.
package server
