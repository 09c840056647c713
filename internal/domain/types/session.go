package types

// Session is a trust-on-first-use record of a peer's identity key. There is
// no Double Ratchet and therefore no long-lived symmetric session key: each
// SendMessage performs a fresh X3DH agreement. Session instead pins the
// peer's identity key across conversations so a later change (server
// compromise, key rotation without notice) can be surfaced to the user
// instead of silently trusted.
type Session struct {
	PeerUsername    Username      `json:"peer_username"`
	PeerIdentityKey Ed25519Public `json:"peer_identity_key"`
	FirstSeenUTC    int64         `json:"first_seen_utc"`
}
