package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/cache"
	"github.com/raaihank/grammar-sentinel/internal/config"
	"github.com/raaihank/grammar-sentinel/internal/grammar"
	"github.com/raaihank/grammar-sentinel/internal/history"
	"github.com/raaihank/grammar-sentinel/internal/logger"
	"github.com/raaihank/grammar-sentinel/internal/syntax"
	"github.com/raaihank/grammar-sentinel/internal/websocket"
)

const version = "0.1.0"

// Dependencies are the optional infrastructure services. Nil fields disable the feature.
type Dependencies struct {
	Cache   *cache.ResultCache
	History *history.Store
}

// Server represents the grammar correction API server
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	checker  atomic.Pointer[grammar.Checker]
	analyzer grammar.SentenceAnalyzer
	cache    *cache.ResultCache
	history  *history.Store
	limiter  *RateLimiter
	wsHub    *websocket.Hub
	router   *mux.Router
	server   *http.Server

	startedAt   time.Time
	corrections atomic.Int64
	cacheHits   atomic.Int64

	cancel context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger, deps Dependencies) (*Server, error) {
	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		cache:     deps.Cache,
		history:   deps.History,
		router:    mux.NewRouter(),
		startedAt: time.Now(),
	}

	if cfg.Grammar.StructuralChecks {
		s.analyzer = syntax.NewHeuristic()
	}

	if err := s.ReloadRules(cfg.Grammar.RulePacks); err != nil {
		return nil, fmt.Errorf("failed to build rule catalog: %w", err)
	}

	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit)
	}

	if cfg.WebSocket.Enabled {
		ws := cfg.WebSocket
		s.wsHub = websocket.NewHub(&websocket.HubConfig{
			BroadcastCorrections: ws.Events.BroadcastCorrections,
			BroadcastSystem:      ws.Events.BroadcastSystem,
			BroadcastConnections: ws.Events.BroadcastConnections,
			Username:             ws.Username,
			Password:             ws.Password,
			AllowedOrigins:       ws.AllowedOrigins,
			MaxConnections:       ws.MaxConnections,
			ReadBufferSize:       ws.ReadBufferSize,
			WriteBufferSize:      ws.WriteBufferSize,
			PingInterval:         ws.PingInterval,
			PongTimeout:          ws.PongTimeout,
			WriteTimeout:         ws.WriteTimeout,
			MaxMessageSize:       ws.MaxMessageSize,
		}, log.WithComponent("websocket").Logger)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	// The upgrade needs the raw ResponseWriter, so /ws skips the wrapping middleware.
	if s.wsHub != nil {
		path := s.config.WebSocket.Path
		if path == "" {
			path = "/ws"
		}
		s.router.HandleFunc(path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	// The /v1 routes sit on the root router so a wrong method reports 405.
	s.handleAPI("/v1/correct", s.handleCorrect, http.MethodPost)
	s.handleAPI("/v1/rules", s.handleRules, http.MethodGet)
	s.handleAPI("/v1/history", s.handleHistoryList, http.MethodGet)
	s.handleAPI("/v1/history/{id}", s.handleHistoryGet, http.MethodGet)
	s.handleAPI("/v1/stats", s.handleStats, http.MethodGet)
	s.handleAPI("/v1/cache", s.handleCacheClear, http.MethodDelete)

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
	})
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// handleAPI registers a /v1 route behind the request id, logging and rate limit middleware
func (s *Server) handleAPI(path string, handler http.HandlerFunc, method string) {
	s.router.Handle(path, s.requestIDMiddleware(s.loggingMiddleware(s.rateLimitMiddleware(handler)))).
		Methods(method)
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Checker returns the active checker
func (s *Server) Checker() *grammar.Checker {
	return s.checker.Load()
}

// ReloadRules rebuilds the catalog from the built-in rules plus the given
// rule packs and swaps it in. In-flight requests finish on the old catalog.
func (s *Server) ReloadRules(packs []string) error {
	catalog, err := grammar.LoadCatalog(nil, packs...)
	if err != nil {
		return err
	}

	previous := s.checker.Swap(grammar.New(catalog, s.analyzer, s.logger.WithComponent("grammar").Logger))

	s.logger.Info("Rule catalog loaded",
		zap.Int("rules", catalog.Len()),
		zap.Strings("rule_packs", packs),
		zap.String("fingerprint", catalog.Fingerprint()),
	)

	if previous != nil && s.wsHub != nil {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeSystemStatus,
			Timestamp: time.Now(),
			Data:      s.systemStatus("rule catalog reloaded"),
		})
	}
	return nil
}

func (s *Server) systemStatus(message string) websocket.SystemStatusEvent {
	catalog := s.Checker().Catalog()
	status := websocket.SystemStatusEvent{
		Status:             "healthy",
		Uptime:             time.Since(s.startedAt).Round(time.Second).String(),
		TotalCorrections:   s.corrections.Load(),
		ActiveRules:        catalog.Len(),
		CatalogFingerprint: catalog.Fingerprint(),
		Message:            message,
	}
	if s.wsHub != nil {
		status.ConnectedClients = s.wsHub.ClientCount()
	}
	return status
}

// Start starts the HTTP server and its background workers. It blocks until the server stops.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.wsHub != nil {
		go s.wsHub.Run(ctx)
	}
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	s.logger.Info("Starting grammar-sentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.Int("default_tier", s.config.Grammar.DefaultTier),
		zap.Bool("structural_checks", s.analyzer != nil),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("history_enabled", s.history != nil),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping grammar-sentinel server")
	if s.cancel != nil {
		s.cancel()
	}
	return s.server.Shutdown(ctx)
}
