// Package http exposes a compiled graph over HTTP with a chi router.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/harbor"
	"github.com/aretw0/harbor/internal/logging"
	"github.com/aretw0/harbor/internal/presentation/graph"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/schema"
	"github.com/aretw0/harbor/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RunRequest is the body of POST /invoke and POST /stream.
type RunRequest struct {
	Input    domain.State `json:"input"`
	Thread   string       `json:"thread,omitempty"`
	MaxSteps int          `json:"max_steps,omitempty"`
}

// RunResponse is the body returned by POST /invoke.
type RunResponse struct {
	Values domain.State `json:"values"`
	Thread string       `json:"thread,omitempty"`
}

// StreamEvent is one NDJSON line of POST /stream, and one SSE payload of GET /events.
type StreamEvent struct {
	Snapshot *ports.Snapshot `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Server serves one compiled graph.
type Server struct {
	Artifact ports.Artifact
	Topology domain.Topology
	// Threads serves /threads. Reads and deletes take the thread lock.
	Threads  *session.Manager
	Streams  *StreamManager
	logger   *slog.Logger

	threadStore ports.Checkpointer
}

// Option configures a Server.
type Option func(*Server)

// WithThreads enables the /threads endpoints on store. When the artifact owns a
// thread manager with a store, that manager is used, so a delete waits for the run
// holding the thread.
func WithThreads(store ports.Checkpointer) Option {
	return func(s *Server) {
		s.threadStore = store
	}
}

// sessionOwner is implemented by artifacts of the in-process engine.
type sessionOwner interface {
	Sessions() *session.Manager
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server for art and the topology it was compiled from.
func NewServer(art ports.Artifact, topo domain.Topology, opts ...Option) *Server {
	s := &Server{
		Artifact: art,
		Topology: topo,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.threadStore != nil {
		if owner, ok := art.(sessionOwner); ok && owner.Sessions().Store() != nil {
			s.Threads = owner.Sessions()
		} else {
			s.Threads = session.NewManager(s.threadStore, session.WithLogger(s.logger))
		}
	}
	return s
}

// NewHandler creates the HTTP handler for art.
func NewHandler(art ports.Artifact, topo domain.Topology, opts ...Option) http.Handler {
	return NewServer(art, topo, opts...).Routes()
}

// Routes mounts every endpoint on a new router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/signature", s.GetSignature)
	r.Post("/invoke", s.Invoke)
	r.Post("/stream", s.Stream)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/threads", func(r chi.Router) {
		r.Get("/", s.ListThreads)
		r.Get("/{thread}", s.GetThread)
		r.Delete("/{thread}", s.DeleteThread)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "harbor-http",
		"version": strings.TrimSpace(harbor.Version),
		"graph":   s.Topology.Graph,
	})
}

type topologyNode struct {
	Name     string `json:"name"`
	Index    int    `json:"index"`
	Contract string `json:"contract"`
}

type topologyView struct {
	Graph    string             `json:"graph"`
	Start    string             `json:"start"`
	Terminal string             `json:"terminal"`
	Nodes    []topologyNode     `json:"nodes"`
	Edges    []domain.Edge      `json:"edges"`
	Schema   *schema.Descriptor `json:"schema,omitempty"`
}

// GetGraph handles the GET /graph request. ?format=mermaid returns a flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, graph.GenerateMermaid(s.Topology, nil))
		return
	}

	view := topologyView{
		Graph:    s.Topology.Graph,
		Start:    s.Topology.Start,
		Terminal: s.Topology.Terminal,
		Edges:    s.Topology.Edges,
	}
	if desc, err := schema.FromAny(s.Topology.Schema); err == nil {
		view.Schema = desc
	}
	for _, n := range s.Topology.Nodes {
		view.Nodes = append(view.Nodes, topologyNode{Name: n.Name, Index: n.Index, Contract: n.Contract.String()})
	}
	writeJSON(w, http.StatusOK, view)
}

// GetSignature handles the GET /signature request.
func (s *Server) GetSignature(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Artifact.Signature())
}

func decodeRun(w http.ResponseWriter, r *http.Request) (RunRequest, []ports.RunOption, bool) {
	var body RunRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return body, nil, false
	}
	var opts []ports.RunOption
	if body.Thread != "" {
		opts = append(opts, ports.WithThread(body.Thread))
	}
	if body.MaxSteps > 0 {
		opts = append(opts, ports.WithRecursionLimit(body.MaxSteps))
	}
	return body, opts, true
}

// Invoke handles the POST /invoke request.
func (s *Server) Invoke(w http.ResponseWriter, r *http.Request) {
	body, opts, ok := decodeRun(w, r)
	if !ok {
		s.logger.Warn("Invoke: Invalid request body")
		return
	}

	values, err := s.Artifact.Invoke(r.Context(), body.Input, opts...)
	if err != nil {
		s.logger.Error("Invoke failed", "graph", s.Topology.Graph, "thread", body.Thread, "err", err)
		http.Error(w, fmt.Sprintf("Invoke error: %v", err), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, RunResponse{Values: values, Thread: body.Thread})
}

// Stream handles the POST /stream request, writing one JSON object per line.
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	body, opts, ok := decodeRun(w, r)
	if !ok {
		s.logger.Warn("Stream: Invalid request body")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)

	for snap, err := range s.Artifact.Stream(r.Context(), body.Input, opts...) {
		event := StreamEvent{}
		if err != nil {
			s.logger.Error("Stream failed", "graph", s.Topology.Graph, "thread", body.Thread, "err", err)
			event.Error = err.Error()
		} else {
			event.Snapshot = &snap
		}
		if err := enc.Encode(event); err != nil {
			s.logger.Warn("Stream: client gone", "err", err)
			return
		}
		flusher.Flush()

		if body.Thread != "" {
			if payload, err := json.Marshal(event); err == nil {
				s.Streams.Broadcast(body.Thread, string(payload))
			}
		}
	}
}

// SubscribeEvents handles the GET /events?thread_id=... request (SSE). Every step
// streamed on that thread through POST /stream is forwarded. An optional
// watch=a,b filter keeps only steps in which one of the named nodes ran.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	thread := r.URL.Query().Get("thread_id")
	if thread == "" {
		http.Error(w, "thread_id is required", http.StatusBadRequest)
		return
	}

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, n := range strings.Split(watch, ",") {
			watchList = append(watchList, strings.TrimSpace(n))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(thread)
	defer cancel()

	s.logger.Info("SSE: Subscribing to thread steps", "thread", thread)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "thread", thread)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 && !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg string, watchList []string) bool {
	var event StreamEvent
	if err := json.Unmarshal([]byte(msg), &event); err != nil || event.Snapshot == nil {
		return true
	}
	for _, n := range event.Snapshot.Nodes {
		if slices.Contains(watchList, n) {
			return true
		}
	}
	return false
}

// ListThreads handles the GET /threads request.
func (s *Server) ListThreads(w http.ResponseWriter, r *http.Request) {
	if s.Threads == nil {
		http.Error(w, "Threads are not persisted", http.StatusNotImplemented)
		return
	}
	threads, err := s.Threads.List(r.Context())
	if err != nil {
		s.logger.Error("ListThreads failed", "err", err)
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"threads": threads})
}

// GetThread handles the GET /threads/{thread} request.
func (s *Server) GetThread(w http.ResponseWriter, r *http.Request) {
	if s.Threads == nil {
		http.Error(w, "Threads are not persisted", http.StatusNotImplemented)
		return
	}
	cp, err := s.Threads.Load(r.Context(), chi.URLParam(r, "thread"))
	if err != nil {
		http.Error(w, fmt.Sprintf("Load error: %v", err), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

// DeleteThread handles the DELETE /threads/{thread} request.
func (s *Server) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if s.Threads == nil {
		http.Error(w, "Threads are not persisted", http.StatusNotImplemented)
		return
	}
	if err := s.Threads.Delete(r.Context(), chi.URLParam(r, "thread")); err != nil {
		s.logger.Error("DeleteThread failed", "err", err)
		http.Error(w, fmt.Sprintf("Delete error: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // Thread -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(thread string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[thread]; !ok {
		sm.subscribers[thread] = make(map[chan<- string]struct{})
	}
	sm.subscribers[thread][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[thread]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, thread)
			}
		}
	}
}

// Broadcast delivers msg to every subscriber of thread, dropping it for full buffers.
func (sm *StreamManager) Broadcast(thread string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[thread] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "thread", thread)
		}
	}
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCheckpointNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrInvocation), schema.IsValidationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
