// Package http is the JSON API surface. Handlers stay thin: decode, call the
// service, encode. Derived aggregates are cached per URL and the cache is
// purged on every successful write.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"subtracker/internal/cache"
	"subtracker/internal/services"
)

type Server struct {
	http.Server
	service     *services.SubscriptionService
	rateLimiter *rateLimiter

	// Cached aggregate responses (summary, breakdown), keyed by URL.
	aggCache *cache.LRUCache[[]byte]

	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, service *services.SubscriptionService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:     service,
		rateLimiter: newRateLimiter(),
		aggCache:    cache.NewLRUCache[[]byte](100, 5*time.Minute),
		now:         time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /subscriptions", s.wrap(s.handleListSubscriptions))
	mux.HandleFunc("POST /subscriptions", s.wrap(s.handleCreateSubscription))
	mux.HandleFunc("GET /subscriptions/{id}", s.wrap(s.handleGetSubscription))
	mux.HandleFunc("PUT /subscriptions/{id}", s.wrap(s.handleUpdateSubscription))
	mux.HandleFunc("DELETE /subscriptions/{id}", s.wrap(s.handleDeleteSubscription))
	mux.HandleFunc("POST /subscriptions/{id}/cancel", s.wrap(s.handleCancelSubscription))
	mux.HandleFunc("POST /subscriptions/{id}/reactivate", s.wrap(s.handleReactivateSubscription))

	mux.HandleFunc("GET /categories", s.wrap(s.handleListCategories))
	mux.HandleFunc("POST /categories", s.wrap(s.handleAddCategory))
	mux.HandleFunc("DELETE /categories/{name}", s.wrap(s.handleDeleteCategory))

	mux.HandleFunc("GET /summary", s.wrap(s.handleSummary))
	mux.HandleFunc("GET /summary/actual", s.wrap(s.handleActualSpending))
	mux.HandleFunc("GET /breakdown", s.wrap(s.handleBreakdown))

	mux.HandleFunc("GET /export", s.wrap(s.handleExport))
	mux.HandleFunc("POST /import", s.wrap(s.handleImport))

	return s
}

// AggregateCache exposes the response cache for expiry sweeps.
func (s *Server) AggregateCache() *cache.LRUCache[[]byte] { return s.aggCache }

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// wrap adds request IDs, logging, security headers, and rate limiting on
// mutating methods.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		// Any successful write invalidates every cached aggregate.
		if isMutating(r.Method) && rw.statusCode < 400 {
			s.aggCache.Purge()
		}

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
