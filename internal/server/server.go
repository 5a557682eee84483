// Package server exposes the resume pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/resume-tabulator/internal/pipeline"
	"github.com/jonathan/resume-tabulator/internal/server/ratelimit"
	"github.com/jonathan/resume-tabulator/internal/types"
)

// Runner is the pipeline surface the server drives.
type Runner interface {
	RunSingle(ctx context.Context, fileID string) (types.OutputRow, error)
	RunBatch(ctx context.Context) (*pipeline.BatchResult, error)
	StreamBatch(ctx context.Context, onProgress pipeline.ProgressCallback) (*pipeline.BatchResult, error)
}

// Config holds server configuration
type Config struct {
	Port      string
	Logger    *slog.Logger
	RateLimit *ratelimit.Config // nil means ratelimit.LoadConfig()
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	runner      Runner
	logger      *slog.Logger
	validator   *validator.Validate
	rateLimiter *ratelimit.Limiter
	runMu       sync.RWMutex // batches hold it exclusively, single runs shared
}

// maxBodyBytes caps request bodies; requests carry a single id.
const maxBodyBytes = 1 << 20

// New creates a new server instance
func New(runner Runner, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		runner:      runner,
		logger:      logger,
		validator:   validator.New(),
		rateLimiter: ratelimit.NewLimiter(rlConfig),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", s.handleProcess)
	mux.HandleFunc("POST /process", s.handleProcess)
	mux.HandleFunc("POST /batch", s.handleBatch)
	mux.HandleFunc("POST /batch/stream", s.handleBatchStream)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withRequestID(s.withLogging(s.withRateLimit(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // batches walk the whole folder
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

type requestIDKey struct{}

// withRequestID tags every request with an id, reusing X-Request-ID when sent.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// clientID uses the remote IP; X-Forwarded-For is not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded", "request_id", requestID(r.Context()), "client", clientID(r), "path", r.URL.Path)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
