// Package httpapi exposes the exam generation service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/beplab/examgen"
)

// Client-facing error messages. Token and rate-limit messages are
// bilingual to match the audience of the original service.
const (
	msgInvalidJSON   = "Invalid JSON"
	msgTokenRejected = "Token invalid or exhausted (卡密无效或次数已用尽)"
	msgStoreError    = "Server Database Error (Contact Admin)"
	msgRateLimited   = "Rate limit exceeded (请求过于频繁，请稍后再试)"
)

// Server orchestrates admission control and exam generation for incoming
// requests and translates outcomes to HTTP results.
type Server struct {
	admission *examgen.AdmissionController
	generator *examgen.ExamGenerator
	store     examgen.QuotaStore
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStore sets the quota store reported by the health endpoint.
func WithStore(store examgen.QuotaStore) Option {
	return func(s *Server) { s.store = store }
}

// New creates a Server.
func New(admission *examgen.AdmissionController, generator *examgen.ExamGenerator, opts ...Option) *Server {
	s := &Server{
		admission: admission,
		generator: generator,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.store == nil {
		s.store = examgen.Unconfigured()
	}
	return s
}

// Handler returns the HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)

	r.Post("/generate-exam", s.handleGenerate)
	r.Get("/generate-exam", s.handleLegacyGenerate)
	r.Get("/healthz", s.handleHealth)

	return r
}

// generateRequest is the POST /generate-exam body.
type generateRequest struct {
	Stage string `json:"stage"`
	Token string `json:"token"`
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Error: msgInvalidJSON})
		return
	}

	adm, err := s.admission.Admit(r.Context(), examgen.AdmissionRequest{
		Token:      req.Token,
		RemoteAddr: clientAddr(r),
	})
	if err != nil {
		s.writeAdmissionError(w, r, err)
		return
	}

	s.generate(w, r, examgen.ResolveStage(req.Stage), adm.QuotaDisplay())
}

// handleLegacyGenerate serves the original unauthenticated GET endpoint:
// default stage, no admission control.
func (s *Server) handleLegacyGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, examgen.DefaultStage, "")
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, stage examgen.Stage, quotaDisplay string) {
	out, err := s.generator.Generate(r.Context(), stage)
	if err != nil {
		s.logger.Error("generation failed", "request_id", requestIDFrom(r.Context()), "stage", string(stage), "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if quotaDisplay != "" {
		w.Header().Set("X-Remaining-Quota", quotaDisplay)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) writeAdmissionError(w http.ResponseWriter, r *http.Request, err error) {
	var rle *examgen.RateLimitError
	switch {
	case errors.As(err, &rle):
		if rle.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rle.RetryAfter.Seconds()+1)))
		}
		writeError(w, http.StatusTooManyRequests, errorResponse{Error: msgRateLimited, Detail: rle.Detail})
	case errors.Is(err, examgen.ErrQuotaExhausted):
		writeError(w, http.StatusForbidden, errorResponse{Error: msgTokenRejected})
	case errors.Is(err, examgen.ErrStoreUnavailable):
		writeError(w, http.StatusInternalServerError, errorResponse{Error: msgStoreError})
	default:
		s.logger.Error("admission failed", "request_id", requestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storeStatus := "ok"
	if err := s.store.Ping(r.Context()); err != nil {
		storeStatus = "unavailable"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"store":  storeStatus,
	})
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// clientAddr extracts the caller's address without port. middleware.RealIP
// has already rewritten RemoteAddr from forwarding headers when present.
func clientAddr(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID tags each request with a UUID, echoed in X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
