// Package relay provides an HTTP/WebSocket RelayClient implementation.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"rendezvous/internal/domain"
)

// HTTP is a RelayClient over HTTP for request/response RPCs and a
// WebSocket for the message retrieval stream.
type HTTP struct {
	Base   string
	client *http.Client
	dialer *websocket.Dialer
}

// NewHTTP constructs a new HTTP relay client rooted at base (e.g.
// "https://relay.example.com"). If client is nil, http.DefaultClient is used.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), client: client, dialer: websocket.DefaultDialer}
}

// RegisterPreKeyBundle publishes bundle to POST /v1/bundles.
func (c *HTTP) RegisterPreKeyBundle(ctx context.Context, bundle domain.RegisterPreKeyBundleRequest) error {
	return c.post(ctx, "/v1/bundles", bundle, nil)
}

// RequestPreKeys retrieves the current bundle for username via
// GET /v1/bundles/{username}.
func (c *HTTP) RequestPreKeys(ctx context.Context, username domain.Username) (domain.PreKeyBundle, error) {
	var out domain.PreKeyBundle
	path := "/v1/bundles/" + url.PathEscape(username.String())
	if err := c.getJSON(ctx, path, &out); err != nil {
		return domain.PreKeyBundle{}, err
	}
	return out, nil
}

// SendMessage posts envelope to POST /v1/messages/{to}.
func (c *HTTP) SendMessage(ctx context.Context, envelope domain.Envelope) error {
	return c.post(ctx, "/v1/messages/"+url.PathEscape(envelope.To.String()), envelope, nil)
}

// RetrieveMessages opens a WebSocket stream at
// GET /v1/messages/{username}/stream. The relay drains any queued
// envelopes immediately on connect, then pushes new arrivals as they are
// sent. The returned channel is closed, and the connection torn down, when
// ctx is cancelled or the connection drops.
func (c *HTTP) RetrieveMessages(ctx context.Context, username domain.Username) (<-chan domain.Envelope, error) {
	wsBase := "ws" + strings.TrimPrefix(c.Base, "http")
	u := wsBase + "/v1/messages/" + url.PathEscape(username.String()) + "/stream"

	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("relay: dial %s: %w", u, err)
	}
	if resp != nil {
		defer resp.Body.Close()
	}

	out := make(chan domain.Envelope)
	go func() {
		defer close(out)
		defer conn.Close()

		done := make(chan struct{})
		go func() {
			<-ctx.Done()
			_ = conn.Close()
			close(done)
		}()

		for {
			var envelope domain.Envelope
			if err := conn.ReadJSON(&envelope); err != nil {
				return
			}
			select {
			case out <- envelope:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// post is a helper for JSON-encoding a POST to path.
func (c *HTTP) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// getJSON performs a GET and JSON-decodes the response into out.
func (c *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertion that HTTP implements domain.RelayClient.
var _ domain.RelayClient = (*HTTP)(nil)
