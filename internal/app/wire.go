package app

import (
	"net/http"
	"time"

	"rendezvous/internal/domain"
	"rendezvous/internal/relay"
	identitysvc "rendezvous/internal/services/identity"
	messagesvc "rendezvous/internal/services/message"
	prekeysvc "rendezvous/internal/services/prekey"
	sessionsvc "rendezvous/internal/services/session"
	"rendezvous/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	IdentityService domain.IdentityService
	PreKeyService   domain.PreKeyService
	SessionService  domain.SessionService
	MessageService  domain.MessageService
	RelayClient     domain.RelayClient
	HTTPClient      *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	// File-based stores
	idStore := store.NewIdentityFileStore(cfg.HomeDir)
	prekeyStore := store.NewPreKeyFileStore(cfg.HomeDir)
	bundleStore := store.NewBundleFileStore(cfg.HomeDir)
	sessionStore := store.NewSessionFileStore(cfg.HomeDir)

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	// Relay client (uses provided HTTP client)
	relayClient := relay.NewHTTP(cfg.RelayURL, httpClient)

	// High-level services
	idSvc := identitysvc.New(idStore)
	prekeySvc := prekeysvc.New(idStore, prekeyStore, bundleStore, relayClient)
	sessionSvc := sessionsvc.New(sessionStore, relayClient, func() int64 { return time.Now().Unix() })
	messageSvc := messagesvc.New(idStore, prekeyStore, sessionStore, relayClient)

	return &Wire{
		IdentityService: idSvc,
		PreKeyService:   prekeySvc,
		SessionService:  sessionSvc,
		MessageService:  messageSvc,
		RelayClient:     relayClient,
		HTTPClient:      httpClient,
	}, nil
}
