package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"animetracker/internal/config"
	"animetracker/internal/logging"
	"animetracker/internal/services"
)

const maxRequestBody = 1 << 20

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	router *mux.Router

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg config.API, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	srv.router = srv.routes(cfg.Token)
	return srv
}

func (s *apiServer) routes(token string) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requestIDMiddleware)
	api.Use(authMiddleware(token))

	api.HandleFunc("/shows", s.handleListShows).Methods(http.MethodGet)
	api.HandleFunc("/shows", s.handleCreateShow).Methods(http.MethodPost)
	api.HandleFunc("/shows/{id}", s.handleGetShow).Methods(http.MethodGet)
	api.HandleFunc("/shows/{id}", s.handleUpdateShow).Methods(http.MethodPut)
	api.HandleFunc("/shows/{id}", s.handleDeleteShow).Methods(http.MethodDelete)
	api.HandleFunc("/shows/{id}/recalculate", s.handleRecalculate).Methods(http.MethodPatch)
	api.HandleFunc("/shows/{id}/toggle-episode", s.handleToggleEpisode).Methods(http.MethodPost)

	api.HandleFunc("/known-shows", s.handleListKnownShows).Methods(http.MethodGet)
	api.HandleFunc("/known-shows", s.handleCreateKnownShow).Methods(http.MethodPost)
	api.HandleFunc("/known-shows/{id}", s.handleUpdateKnownShow).Methods(http.MethodPut)
	api.HandleFunc("/known-shows/{id}", s.handleDeleteKnownShow).Methods(http.MethodDelete)

	api.HandleFunc("/logs", s.handleListLogs).Methods(http.MethodGet)
	api.HandleFunc("/logs", s.handleAddLog).Methods(http.MethodPost)
	api.HandleFunc("/logs", s.handleClearLogs).Methods(http.MethodDelete)

	api.HandleFunc("/scan", s.handleScanStatus).Methods(http.MethodGet)
	api.HandleFunc("/scan", s.handleStartScan).Methods(http.MethodPost)
	api.HandleFunc("/scan", s.handleCancelScan).Methods(http.MethodDelete)
	api.HandleFunc("/scan/magnets", s.handleListMagnets).Methods(http.MethodGet)
	api.HandleFunc("/scan/magnets", s.handleClearMagnets).Methods(http.MethodDelete)
	api.HandleFunc("/magnet", s.handleOpenMagnet).Methods(http.MethodPost)
	api.HandleFunc("/parse-title", s.handleParseTitle).Methods(http.MethodPost)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

// errorText names the messages a route reports for each failure class.
type errorText struct {
	notFound string
	conflict string
	failure  string
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error onto a status code: validation is
// 400, not found 404, conflicts 409, anything else 500.
func (s *apiServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error, text errorText) {
	switch {
	case errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, firstNonEmpty(text.notFound, clientMessage(err)))
	case errors.Is(err, services.ErrConflict):
		s.writeError(w, http.StatusConflict, firstNonEmpty(text.conflict, clientMessage(err)))
	default:
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, firstNonEmpty(text.failure, "internal error"))
	}
}

// clientMessage returns the last segment of a wrapped service error, which
// carries the human readable reason.
func clientMessage(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// decodeBody reads a JSON request body into dst. An empty body leaves dst
// untouched.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
