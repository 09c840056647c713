package interfaces

import (
	"context"

	domaintypes "rendezvous/internal/domain/types"
)

// RelayClient is how we talk to the rendezvous server, all with context.
type RelayClient interface {
	RegisterPreKeyBundle(ctx context.Context, bundle domaintypes.RegisterPreKeyBundleRequest) error
	RequestPreKeys(
		ctx context.Context,
		username domaintypes.Username,
	) (domaintypes.PreKeyBundle, error)

	SendMessage(ctx context.Context, envelope domaintypes.Envelope) error
	// RetrieveMessages opens a live-receiver stream for username: the relay
	// drains any queued envelopes immediately, then pushes new arrivals as
	// they are sent. The stream ends when ctx is cancelled or the
	// connection drops.
	RetrieveMessages(
		ctx context.Context,
		username domaintypes.Username,
	) (<-chan domaintypes.Envelope, error)
}
