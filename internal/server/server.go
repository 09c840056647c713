package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Networking limits.
const (
	readHeaderTO = 5 * time.Second
	readTO       = 30 * time.Second
	writeTO      = 0 // streaming responses must not be write-deadlined
	idleTO       = 60 * time.Second
)

type ctxKey string

const ctxKeyReqID ctxKey = "reqid"

// Server is the rendezvous relay's HTTP/WebSocket front end.
type Server struct {
	registry *Registry
	metrics  *metrics
	logger   *slog.Logger
	http     *http.Server
}

// New constructs a Server listening on addr. If logger is nil, slog's
// default logger is used.
func New(addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	promReg := prometheus.NewRegistry()
	s := &Server{
		registry: NewRegistry(),
		metrics:  newMetrics(promReg),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/bundles", chain(s.handleRegister, withRecover(logger), withReqID, withLogging(logger)))
	mux.HandleFunc("GET /v1/bundles/{username}", chain(s.handleRequestBundle, withRecover(logger), withReqID, withLogging(logger)))
	mux.HandleFunc("POST /v1/messages/{to}", chain(s.handleSendMessage, withRecover(logger), withReqID, withLogging(logger)))
	mux.HandleFunc("GET /v1/messages/{username}/stream", chain(s.handleRetrieveMessages, withRecover(logger), withReqID))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTO,
		ReadTimeout:       readTO,
		WriteTimeout:      writeTO,
		IdleTimeout:       idleTO,
	}
	return s
}

// Run starts the server and blocks until ctx is cancelled, then gracefully
// shuts down with a 10-second drain window.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("relay listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: graceful shutdown: %w", err)
	}
	return <-errCh
}

// --- middleware, grounded on the relay's original access-log chain ---

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(p []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(p)
	lrw.bytes += n
	return n, err
}

func withRecover(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					writeErr(w, http.StatusInternalServerError, "internal error")
					logger.Error("panic", "err", rec)
				}
			}()
			h(w, r)
		}
	}
}

func withReqID(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = genReqID()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), ctxKeyReqID, id)
		h(w, r.WithContext(ctx))
	}
}

func withLogging(logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			h(lrw, r)
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", clientIP(r),
				"status", lrw.status,
				"bytes", lrw.bytes,
				"dur", time.Since(start),
				"reqid", requestIDFromCtx(r.Context()),
			)
		}
	}
}

func chain(h http.HandlerFunc, mws ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xr := r.Header.Get("X-Real-IP"); xr != "" {
		return xr
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func genReqID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
