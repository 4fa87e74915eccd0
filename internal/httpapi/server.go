// Package httpapi exposes payload building, restoring and sessions over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/pkg/session"
	"github.com/goliatone/go-wizard/schema/jsonschema"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSchemaGenerator replaces the generator serving /v1/schema.
func WithSchemaGenerator(g jsonschema.Generator) Option {
	return func(s *Server) {
		s.schema = g
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// Server routes wizard requests.
type Server struct {
	router  chi.Router
	manager *session.Manager
	wizard  *wizard.Wizard
	schema  jsonschema.Generator
	log     *zap.Logger
	maxBody int64
}

// NewServer builds the router around manager.
func NewServer(manager *session.Manager, opts ...Option) (*Server, error) {
	if manager == nil {
		return nil, fmt.Errorf("httpapi: session manager is required")
	}
	s := &Server{
		router:  chi.NewRouter(),
		manager: manager,
		wizard:  manager.Wizard(),
		schema:  jsonschema.NewGenerator(),
		log:     zap.NewNop(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			s.log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("dur", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/schema", s.handleSchema)
		r.Post("/payload", s.handleBuild)
		r.Post("/restore", s.handleRestore)
		r.Post("/sessions", s.handleStartSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Patch("/", s.handleApplyUpdates)
			r.Get("/payload", s.handleExport)
			r.Put("/payload", s.handleImport)
		})
	})
}

type stateRequest struct {
	State wizard.ControlState `json:"state"`
}

type updatesRequest struct {
	Updates []wizard.Update `json:"updates"`
}

type importResponse struct {
	Session  session.Session  `json:"session"`
	Warnings []wizard.Warning `json:"warnings"`
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	doc, err := s.schema.Generate(s.wizard.Questionnaire())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.wizard.Build(req.State))
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var payload any
	if !s.decode(w, r, &payload) {
		return
	}
	result, err := s.wizard.Restore(payload)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	started, err := s.manager.Start(r.Context(), req.State)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Location", "/v1/sessions/"+started.ID)
	writeSession(w, http.StatusCreated, started)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	current, err := s.manager.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeSession(w, http.StatusOK, current)
}

func (s *Server) handleApplyUpdates(w http.ResponseWriter, r *http.Request) {
	var req updatesRequest
	if !s.decode(w, r, &req) {
		return
	}
	updated, _, err := s.manager.Apply(r.Context(), chi.URLParam(r, "id"), ifMatch(r), req.Updates)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeSession(w, http.StatusOK, updated)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	payload, meta, err := s.manager.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	setETag(w, meta.ETag)
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var payload any
	if !s.decode(w, r, &payload) {
		return
	}
	imported, result, err := s.manager.Import(r.Context(), chi.URLParam(r, "id"), ifMatch(r), payload)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []wizard.Warning{}
	}
	setETag(w, imported.Meta.ETag)
	writeJSON(w, http.StatusOK, importResponse{Session: imported, Warnings: warnings})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("httpapi: decode request: %w", err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrETagMismatch):
		return http.StatusPreconditionFailed
	case errors.Is(err, wizard.ErrPayloadShape):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func ifMatch(r *http.Request) string {
	return strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
}

func setETag(w http.ResponseWriter, etag string) {
	if etag != "" {
		w.Header().Set("ETag", `"`+etag+`"`)
	}
}

func writeSession(w http.ResponseWriter, status int, s session.Session) {
	setETag(w, s.Meta.ETag)
	writeJSON(w, status, s)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.log.Warn("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
