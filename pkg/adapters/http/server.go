package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/internal/logging"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/domain"
	"github.com/aretw0/stagehand/pkg/launch"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Coordinator is the part of stagehand.Coordinator the bridge drives.
type Coordinator interface {
	Launch(ctx context.Context, b *launch.Builder) (domain.Descriptor, error)
	Instantiate(ctx context.Context, uniqueID string, surfaces ports.Surfaces) (*stagehand.Container, error)
	Release(ctx context.Context, uniqueID string) error
	Dispatch(ctx context.Context, id string, s domain.Signal) error
	Container(id string) (*stagehand.Container, bool)
	Snapshot() domain.Snapshot
	Engines() []string
}

var _ Coordinator = (*stagehand.Coordinator)(nil)

// SurfaceFactory supplies the surfaces of a container created over HTTP.
type SurfaceFactory func(uniqueID string) ports.Surfaces

// EngineInspector reports which surfaces draw through an engine (virtual engines do).
type EngineInspector interface {
	AttachedSurfaces() []string
}

// Server implements the HTTP routes.
type Server struct {
	Coordinator Coordinator
	Stream      *observability.Stream
	Surfaces    SurfaceFactory
	Gatherer    prometheus.Gatherer
	Inspectors  map[string]EngineInspector
	logger      *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStream serves GET /events from stream. The stream's hooks must be
// registered on the coordinator for events to flow.
func WithStream(stream *observability.Stream) Option {
	return func(s *Server) {
		s.Stream = stream
	}
}

// WithSurfaceFactory overrides the virtual surfaces used by POST /containers.
func WithSurfaceFactory(f SurfaceFactory) Option {
	return func(s *Server) {
		s.Surfaces = f
	}
}

// WithGatherer serves GET /metrics from gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithEngineInspector lets GET /engines/{id} list the surfaces drawing through the engine.
func WithEngineInspector(engineID string, in EngineInspector) Option {
	return func(s *Server) {
		s.Inspectors[engineID] = in
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for co.
func NewHandler(co Coordinator, opts ...Option) http.Handler {
	s := &Server{
		Coordinator: co,
		Inspectors:  make(map[string]EngineInspector),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Surfaces == nil {
		journal := virtual.NewJournal()
		s.Surfaces = func(id string) ports.Surfaces {
			return virtual.NewSurfaces(id, journal)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/containers", func(r chi.Router) {
		r.Get("/", s.ListContainers)
		r.Post("/", s.CreateContainer)
		r.Get("/{id}", s.GetContainer)
		r.Post("/{id}/signals/{signal}", s.SendSignal)
		r.Post("/{id}/finish", s.FinishContainer)
	})
	r.Get("/engines/{id}", s.GetEngine)
	if s.Stream != nil {
		r.Get("/events", s.SubscribeEvents)
	}
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateRequest is the body of POST /containers.
type CreateRequest struct {
	URL                        string         `json:"url"`
	URLParams                  map[string]any `json:"url_params,omitempty"`
	UniqueID                   string         `json:"unique_id,omitempty"`
	EngineID                   string         `json:"engine_id,omitempty"`
	BackgroundMode             string         `json:"background_mode,omitempty"`
	DestroyEngineWithContainer bool           `json:"destroy_engine_with_container,omitempty"`
}

// FinishRequest is the body of POST /containers/{id}/finish.
type FinishRequest struct {
	Result map[string]any `json:"result,omitempty"`
}

// EngineInfo is the body of GET /engines/{id}.
type EngineInfo struct {
	ID       string   `json:"id"`
	Attached string   `json:"attached,omitempty"`
	Surfaces []string `json:"surfaces,omitempty"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "stagehand-http",
		"version": stagehand.Version,
		"engines": s.Coordinator.Engines(),
	})
}

// ListContainers handles GET /containers.
func (s *Server) ListContainers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Coordinator.Snapshot())
}

// CreateContainer handles POST /containers.
func (s *Server) CreateContainer(w http.ResponseWriter, r *http.Request) {
	var body CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	mode, err := domain.ParseBackgroundMode(body.BackgroundMode)
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	b := launch.NewBuilder().
		URL(body.URL).
		URLParams(body.URLParams).
		UniqueID(body.UniqueID).
		BackgroundMode(mode).
		DestroyEngineWithContainer(body.DestroyEngineWithContainer)
	if body.EngineID != "" {
		b = b.EngineID(body.EngineID)
	}

	desc, err := s.Coordinator.Launch(r.Context(), b)
	if err != nil {
		s.writeError(w, err, statusFor(err))
		return
	}
	if _, err := s.Coordinator.Instantiate(r.Context(), desc.UniqueID, s.Surfaces(desc.UniqueID)); err != nil {
		s.release(r.Context(), desc.UniqueID)
		s.writeError(w, err, statusFor(err))
		return
	}

	info, _ := s.Coordinator.Snapshot().Find(desc.UniqueID)
	s.logger.Info("container created over http", "container", desc.UniqueID, "url", desc.URL)
	s.writeJSON(w, http.StatusCreated, info)
}

// GetContainer handles GET /containers/{id}.
func (s *Server) GetContainer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, ok := s.Coordinator.Snapshot().Find(id)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, id), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// SendSignal handles POST /containers/{id}/signals/{signal}.
func (s *Server) SendSignal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	signal, err := domain.ParseSignal(chi.URLParam(r, "signal"))
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}

	if err := s.Coordinator.Dispatch(r.Context(), id, signal); err != nil {
		s.writeError(w, err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusOK, s.Coordinator.Snapshot())
}

// FinishContainer handles POST /containers/{id}/finish.
func (s *Server) FinishContainer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body FinishRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
			return
		}
	}

	c, ok := s.Coordinator.Container(id)
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrContainerNotFound, id), http.StatusNotFound)
		return
	}
	c.FinishContainer(body.Result)

	result, _ := c.Result()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"unique_id": id,
		"finishing": c.IsFinishing(),
		"result":    result,
	})
}

// GetEngine handles GET /engines/{id}.
func (s *Server) GetEngine(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	owner, ok := s.Coordinator.Snapshot().Owners[id]
	if !ok {
		s.writeError(w, fmt.Errorf("%w: %s", domain.ErrEngineNotFound, id), http.StatusNotFound)
		return
	}
	info := EngineInfo{ID: id, Attached: owner}
	if in, ok := s.Inspectors[id]; ok {
		info.Surfaces = in.AttachedSurfaces()
	}
	s.writeJSON(w, http.StatusOK, info)
}

// SubscribeEvents handles GET /events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	filter := r.URL.Query().Get("container")
	events, cancel := s.Stream.Subscribe(filter)
	defer cancel()
	s.logger.Info("SSE: client subscribed", "container", filter)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "container", filter)
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Error("SSE: event encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}

// release drops the descriptor reserved for a container that failed to instantiate.
func (s *Server) release(ctx context.Context, id string) {
	if err := s.Coordinator.Release(ctx, id); err != nil && !errors.Is(err, domain.ErrDescriptorNotFound) {
		s.logger.Warn("failed to release descriptor", "container", id, "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrContainerNotFound),
		errors.Is(err, domain.ErrDescriptorNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateContainer):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingURL),
		errors.Is(err, domain.ErrEngineNotFound),
		errors.Is(err, domain.ErrUnknownSignal),
		errors.Is(err, domain.ErrUnknownBackgroundMode),
		errors.Is(err, domain.ErrMissingSurface):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	} else {
		s.logger.Warn("request rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
