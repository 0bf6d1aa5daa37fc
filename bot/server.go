/*
server.go - HTTP router and signature verification

PURPOSE:
  Configures the chi router, middleware stack, and the interactions
  endpoint. Every interaction POST carries an Ed25519 signature over
  timestamp+body; unverifiable requests are rejected with 401 before
  any dispatch.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Standard headers for dashboard tooling

ROUTES:
  POST /interactions   Signed interaction webhook
  GET  /healthz        Liveness probe

SEE ALSO:
  - handler.go: Interaction dispatch
  - cmd/bot/main.go: Server startup
*/
package bot

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates the router with all routes configured.
func NewRouter(h *Handler, publicKey ed25519.PublicKey) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Signature-Ed25519", "X-Signature-Timestamp"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(VerifySignature(publicKey))
		r.Post("/interactions", h.HandleInteractions)
	})

	return r
}

// VerifySignature authenticates interaction POSTs: the platform signs
// timestamp+body with the application's Ed25519 key.
func VerifySignature(publicKey ed25519.PublicKey) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sig, err := hex.DecodeString(r.Header.Get("X-Signature-Ed25519"))
			if err != nil || len(sig) != ed25519.SignatureSize {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}
			timestamp := r.Header.Get("X-Signature-Timestamp")
			if timestamp == "" {
				http.Error(w, "missing timestamp", http.StatusUnauthorized)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "unreadable body", http.StatusBadRequest)
				return
			}
			r.Body.Close()

			if !ed25519.Verify(publicKey, append([]byte(timestamp), body...), sig) {
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

// ParsePublicKey decodes a hex-encoded Ed25519 public key.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return ed25519.PublicKey(key), nil
}
