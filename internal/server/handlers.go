package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"rendezvous/internal/domain"
)

const (
	maxRequestBody = 1 << 20 // 1 MiB cap for incoming JSON bodies
	maxCipherBytes = 64 << 10
	maxFutureSkew  = 10 * time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleRegister accepts a pre-key bundle registration (POST /v1/bundles).
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req domain.RegisterPreKeyBundleRequest
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.Username == "" {
		writeErr(w, http.StatusBadRequest, "username required")
		return
	}
	if req.SignedPreKeyID == "" {
		writeErr(w, http.StatusBadRequest, "signed pre-key required")
		return
	}

	if err := s.registry.Register(req); err != nil {
		switch {
		case errors.Is(err, domain.ErrRegistrationConflict):
			writeErr(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrSignatureInvalid):
			writeErr(w, http.StatusUnauthorized, err.Error())
		default:
			writeErr(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	s.metrics.bundlesRegistered.Inc()
	s.logger.Info("bundle registered",
		"user", req.Username.String(),
		"spk_id", req.SignedPreKeyID,
		"one_time_count", len(req.OneTimePreKeys),
		"reqid", requestIDFromCtx(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// handleRequestBundle returns a registered bundle, dispensing one one-time
// pre-key if available (GET /v1/bundles/{username}).
func (s *Server) handleRequestBundle(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(r.PathValue("username"))
	if username == "" {
		writeErr(w, http.StatusBadRequest, "username required")
		return
	}

	bundle, err := s.registry.Bundle(username)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownIdentity):
			http.NotFound(w, r)
		case errors.Is(err, domain.ErrBundleIncomplete):
			writeErr(w, http.StatusConflict, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.metrics.bundlesRequested.Inc()
	if bundle.OneTimePreKey == nil {
		s.metrics.oneTimeKeysExhausted.Inc()
	}
	s.logger.Info("bundle requested",
		"user", username.String(),
		"spk_id", bundle.SignedPreKeyID,
		"dispensed_one_time_key", bundle.OneTimePreKey != nil,
		"reqid", requestIDFromCtx(r.Context()),
	)
	writeJSON(w, bundle)
}

// handleSendMessage accepts an envelope for relay (POST /v1/messages/{to}).
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	to := domain.Username(r.PathValue("to"))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var envelope domain.Envelope
	if err := dec.Decode(&envelope); err != nil {
		writeErr(w, http.StatusBadRequest, "bad request")
		return
	}
	if envelope.To == "" || envelope.To != to {
		writeErr(w, http.StatusBadRequest, "recipient mismatch")
		return
	}
	if len(envelope.Cipher) > maxCipherBytes {
		writeErr(w, http.StatusRequestEntityTooLarge, "cipher too large")
		return
	}
	if envelope.Timestamp == 0 {
		envelope.Timestamp = time.Now().Unix()
	} else if time.Unix(envelope.Timestamp, 0).After(time.Now().Add(maxFutureSkew)) {
		writeErr(w, http.StatusBadRequest, "timestamp in future")
		return
	}

	live := s.registry.Deliver(envelope)

	s.metrics.messagesSent.Inc()
	if live {
		s.metrics.messagesLive.Inc()
	} else {
		s.metrics.messagesQueued.Inc()
	}
	s.logger.Info("message relayed",
		"from", envelope.From.String(),
		"to", envelope.To.String(),
		"cipher_bytes", len(envelope.Cipher),
		"delivered_live", live,
		"reqid", requestIDFromCtx(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// handleRetrieveMessages upgrades to a WebSocket and streams envelopes for
// username: the queued backlog first, then live arrivals
// (GET /v1/messages/{username}/stream).
func (s *Server) handleRetrieveMessages(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(r.PathValue("username"))
	if username == "" {
		writeErr(w, http.StatusBadRequest, "username required")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err, "user", username.String())
		return
	}
	defer conn.Close()

	envelopes, unsubscribe := s.registry.Subscribe(username)
	defer unsubscribe()

	s.metrics.streamsOpen.Inc()
	defer s.metrics.streamsOpen.Dec()
	s.logger.Info("retrieval stream opened", "user", username.String())
	defer s.logger.Info("retrieval stream closed", "user", username.String())

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case envelope, ok := <-envelopes:
			if !ok {
				return
			}
			if err := conn.WriteJSON(envelope); err != nil {
				return
			}
		}
	}
}

// handleHealth is a liveness/readiness probe endpoint.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func requestIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyReqID).(string); ok {
		return v
	}
	return ""
}
