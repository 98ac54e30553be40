// Package api exposes the question-answering pipeline over JSON HTTP.
//
// Routes:
//
//	POST /api/query          answer a question, with optional session
//	GET  /api/courses        catalog statistics
//	POST /api/session/clear  drop a session's history
//	GET  /health             liveness
//	GET  /ready              readiness (includes a database ping)
//
// Health probes bypass the middleware stack so load balancers are not
// subject to rate limiting or request logging noise.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ServerConfig carries the dependencies and policy knobs for the server.
type ServerConfig struct {
	Logger      *slog.Logger
	Service     QueryService  // Required
	Pool        *pgxpool.Pool // Optional: nil degrades /ready to liveness
	CORSOrigins []string
	TrustProxy  bool // Trust X-Real-IP/X-Forwarded-For (behind a reverse proxy)
	RateBurst   int  // Per-IP burst size (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer builds the route table and middleware stack.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("query service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	qh := &queryHandler{service: cfg.Service, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", qh.handleQuery)
	mux.HandleFunc("GET /api/courses", qh.handleCourses)
	mux.HandleFunc("POST /api/session/clear", qh.handleClearSession)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Outermost first: Recovery → RequestID → Logging → CORS → RateLimit.
	// RequestID precedes Logging so request_id shows up in log lines; CORS
	// precedes RateLimit so preflight responses carry CORS headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
