package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/alexhdezf18/finanzas-pro-check/internal/cache"
	"github.com/alexhdezf18/finanzas-pro-check/internal/identity"
	"github.com/alexhdezf18/finanzas-pro-check/internal/services"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyOwnerID   ctxKey = "owner_id"
)

// Server is the JSON API server. It wraps http.Server and owns the report
// cache and rate limiter lifecycles.
type Server struct {
	http.Server
	auth    *identity.Service
	ledger  *services.LedgerService
	reports *services.ReportService
	ready   func(ctx context.Context) error

	rateLimiter *rateLimiter

	// Monthly reports are cached per (owner, year, month) and invalidated
	// on any write by that owner.
	reportCache *cache.LRUCache[services.MonthlyReport]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. ready is probed by /readyz; nil means always ready.
func NewServer(addr string, auth *identity.Service, ledger *services.LedgerService, reports *services.ReportService, ready func(ctx context.Context) error) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:             auth,
		ledger:           ledger,
		reports:          reports,
		ready:            ready,
		rateLimiter:      newRateLimiter(),
		reportCache:      cache.NewLRUCache[services.MonthlyReport](200, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/register", s.withCommon(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.withCommon(s.handleLogin))

	mux.HandleFunc("GET /api/categories", s.withCommon(s.requireAuth(s.handleListCategories)))
	mux.HandleFunc("POST /api/categories", s.withCommon(s.requireAuth(s.handleCreateCategory)))
	mux.HandleFunc("GET /api/categories/{id}", s.withCommon(s.requireAuth(s.handleGetCategory)))
	mux.HandleFunc("PUT /api/categories/{id}", s.withCommon(s.requireAuth(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withCommon(s.requireAuth(s.handleDeleteCategory)))

	mux.HandleFunc("GET /api/transactions", s.withCommon(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.withCommon(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/transactions/{id}", s.withCommon(s.requireAuth(s.handleGetTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withCommon(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withCommon(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/reports/monthly", s.withCommon(s.requireAuth(s.handleMonthlyReport)))

	return s
}

// startCacheCleanup periodically drops expired report entries.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.reportCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Report cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withCommon adds security headers, rate limiting, a request id, and request
// logging.
func (s *Server) withCommon(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Client IP, considering proxies.
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit writes only; reads are cheap and cached.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// requireAuth verifies the bearer token and stashes the owner id in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ownerID, err := s.auth.VerifyToken(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Token verification failed", "error", err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyOwnerID, ownerID)
		next(w, r.WithContext(ctx))
	}
}

// ownerID returns the authenticated owner from the request context. Zero
// means the auth middleware did not run.
func ownerID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKeyOwnerID).(int64)
	return id
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request id for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) reportCacheKey(owner int64, year, month int) string {
	return strconv.FormatInt(owner, 10) + "-" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateReports drops every cached report for the owner. Writes are rare
// enough that per-month precision is not worth tracking moved dates.
func (s *Server) invalidateReports(owner int64) {
	s.reportCache.DeletePrefix(strconv.FormatInt(owner, 10) + "-")
}
