// Package prekey mints signed and one-time pre-keys and publishes them to
// the relay.
//
// Every call to GenerateAndRegister rotates the signed pre-key and tops up
// the one-time pre-key pool, then uploads the batch under the identity's
// BLAKE2b bundle signature.
package prekey
