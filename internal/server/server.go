package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"chessgif/internal/bridge"
	"chessgif/internal/colors"
	"chessgif/internal/config"
	"chessgif/internal/history"
	"chessgif/internal/ingest"
	"chessgif/internal/logging"
	"chessgif/internal/services"
	"chessgif/internal/uistate"
	"chessgif/internal/worker"
)

// HistoryReader is the read side of the history store.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
	Stats(ctx context.Context) (history.Stats, error)
}

type surface struct {
	id       string
	logger   *slog.Logger
	mirror   *uistate.Mirror
	control  *uistate.TextBuffer
	bridge   *bridge.Bridge
	ingestor *ingest.Ingestor
}

// Server serves the HTTP surface for one worker session.
type Server struct {
	cfg     *config.Config
	session *worker.Session
	history HistoryReader
	logger  *slog.Logger
	policy  bridge.Policy
	pair    colors.Pair
	lock    *flock.Flock

	mu       sync.Mutex
	surfaces map[string]*surface
	baseCtx  context.Context

	listener net.Listener
	server   *http.Server
}

// New builds a server. store may be nil when history is disabled.
func New(cfg *config.Config, session *worker.Session, store HistoryReader, logger *slog.Logger) (*Server, error) {
	if cfg == nil || session == nil {
		return nil, errors.New("server requires config and worker session")
	}
	policy, err := bridge.ParsePolicy(cfg.Worker.OverlapPolicy)
	if err != nil {
		return nil, err
	}
	pair, err := colors.Validate(cfg.BoardColors())
	if err != nil {
		return nil, fmt.Errorf("board colors: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		session:  session,
		history:  store,
		logger:   logging.NewComponentLogger(logger, "api-server"),
		policy:   policy,
		pair:     pair,
		lock:     flock.New(cfg.LockPath()),
		surfaces: make(map[string]*surface),
		baseCtx:  context.Background(),
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed API with authentication applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/notation", s.handleNotation)
	mux.HandleFunc("PUT /api/sessions/{id}/colors", s.handleColors)
	mux.HandleFunc("POST /api/sessions/{id}/upload", s.handleUpload)
	mux.HandleFunc("POST /api/sessions/{id}/convert", s.handleConvert)
	mux.HandleFunc("GET /api/themes", s.handleThemes)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	return authMiddleware(s.cfg.Paths.APIToken, mux)
}

// Start takes the instance lock and begins serving on the configured bind
// address until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chessgif server instance is already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Paths.APIBind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}

	s.mu.Lock()
	s.baseCtx = ctx
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve_failed", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.cfg.LockPath()),
		logging.Bool("auth", s.cfg.Paths.APIToken != ""),
	)
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts down HTTP, closes every surface and releases the lock.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	surfaces := s.surfaces
	s.surfaces = make(map[string]*surface)
	s.listener = nil
	s.mu.Unlock()

	for _, sf := range surfaces {
		sf.bridge.Close()
		sf.ingestor.Wait()
	}
	if s.lock.Locked() {
		_ = s.lock.Unlock()
	}
}

func (s *Server) createSurface() *surface {
	id := uuid.NewString()
	mirror := uistate.NewMirror(s.pair)
	control := &uistate.TextBuffer{}
	mirror.Bind(control)

	sessionLogger := logging.WithContext(services.WithSessionID(context.Background(), id), s.logger)
	sf := &surface{
		id:       id,
		logger:   sessionLogger,
		mirror:   mirror,
		control:  control,
		bridge:   bridge.New(s.session, mirror, sessionLogger, bridge.WithPolicy(s.policy)),
		ingestor: ingest.New(mirror, sessionLogger, ingest.WithMaxBytes(s.cfg.Ingest.MaxBytes)),
	}

	s.mu.Lock()
	s.surfaces[id] = sf
	s.mu.Unlock()
	return sf
}

func (s *Server) surface(id string) (*surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, ok := s.surfaces[id]
	return sf, ok
}

func (s *Server) removeSurface(id string) (*surface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, ok := s.surfaces[id]
	if ok {
		delete(s.surfaces, id)
	}
	return sf, ok
}

func (s *Server) ingestContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

func (sf *surface) view() SessionView {
	snap := sf.mirror.Snapshot()
	return SessionView{
		ID:         sf.id,
		Notation:   snap.Notation,
		DarkColor:  snap.DarkColor,
		LightColor: snap.LightColor,
		Error:      snap.Error,
		Image:      snap.Image.DataURL,
		ImageAlt:   snap.Image.Alt,
		Pending:    snap.Pending,
		Ready:      sf.bridge.Ready(),
	}
}
