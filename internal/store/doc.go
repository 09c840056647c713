// Package store provides file-based persistence for the client's local state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files typically live under the user's configured
// home directory.
//
// The package includes stores for:
//   - The local identity key, encrypted at rest (IdentityFileStore)
//   - Signed and one-time pre-keys (PreKeyFileStore)
//   - The last registered pre-key bundle request (BundleFileStore)
//   - Trust-on-first-use peer identity pins (SessionFileStore)
package store
