package interfaces

import (
	"context"

	domaintypes "rendezvous/internal/domain/types"
)

// IdentityService creates, retrieves, and inspects your identity key.
type IdentityService interface {
	GenerateIdentity(passphrase string) (
		domaintypes.Identity,
		domaintypes.Fingerprint,
		error,
	)
	LoadIdentity(passphrase string) (domaintypes.Identity, error)
	FingerprintIdentity(passphrase string) (domaintypes.Fingerprint, error)
}

// PreKeyService generates pre-keys and publishes them to the relay.
type PreKeyService interface {
	// GenerateAndRegister mints a new signed pre-key and count one-time
	// pre-keys, signs the batch, and registers it with the relay.
	GenerateAndRegister(
		ctx context.Context,
		passphrase string,
		username domaintypes.Username,
		count int,
	) error
}

// SessionService pins and retrieves a peer's identity key on first contact.
type SessionService interface {
	InitiateSession(
		ctx context.Context,
		username domaintypes.Username,
		peer domaintypes.Username,
	) (domaintypes.Session, error)
	GetSession(peer domaintypes.Username) (domaintypes.Session, bool, error)
}

// MessageService encrypts, sends, fetches and decrypts messages.
type MessageService interface {
	SendMessage(
		ctx context.Context,
		passphrase string,
		from domaintypes.Username,
		to domaintypes.Username,
		plaintext []byte,
	) error
	ReceiveMessage(
		ctx context.Context,
		passphrase string,
		me domaintypes.Username,
		limit int,
	) ([]domaintypes.DecryptedMessage, error)
	// StreamMessages subscribes as a live receiver for me and delivers
	// decrypted messages to out until ctx is cancelled or an error occurs.
	StreamMessages(
		ctx context.Context,
		passphrase string,
		me domaintypes.Username,
		out chan<- domaintypes.DecryptedMessage,
	) error
}
