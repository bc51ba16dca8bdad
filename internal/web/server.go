package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/JuniperSearch/internal/cache"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/server"
	"github.com/FocuswithJustin/JuniperSearch/internal/store"
)

// Server wires the store to HTTP.
type Server struct {
	cfg      Config
	store    *store.Store
	hub      *Hub
	cache    *cache.TTLCache[string, *SearchResponse]
	limiter  *RateLimiter
	upgrader websocket.Upgrader

	// liveSearch answers live requests; tests replace it to control timing.
	liveSearch func(term string) *SearchResponse
}

// NewServer builds a server over st. The store may still be loading.
func NewServer(st *store.Store, cfg Config) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:   cfg,
		store: st,
		hub:   NewHub(),
	}
	s.liveSearch = s.search
	if cfg.SearchCacheTTL > 0 {
		s.cache = cache.NewBounded[string, *SearchResponse](cfg.SearchCacheTTL, cfg.SearchCacheSize)
	}
	if cfg.RateLimitRequests > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitBurst)
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Hub returns the live-search hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/verses", s.handleVerses)
	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("GET /api/chapters", s.handleChapters)
	mux.HandleFunc("GET /api/random", s.handleRandom)
	mux.HandleFunc("GET /api/documents", s.handleDocuments)
	mux.HandleFunc("GET /api/pages", s.handlePages)
	mux.HandleFunc("GET /ws/search", s.handleLiveSearch)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// Handler returns the full middleware chain: request ID and access log,
// CORS, rate limiting, slow-request timing and security headers.
func (s *Server) Handler() http.Handler {
	var h http.Handler = server.SecurityHeadersWithCSP(server.APICSPConfig(), s.setupRoutes())
	h = server.TimingMiddleware(h)
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	h = server.CORSMiddlewareWithConfig(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, h)
	return logging.CombinedMiddleware(h)
}

// NotifyStatus pushes the store state to every live client.
// Cached search responses are dropped first.
func (s *Server) NotifyStatus() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
	st := s.store.Status()
	s.hub.Broadcast(StatusMessage{Type: "status", Ready: st.Ready, Verses: st.Verses})
}

// ListenAndServe serves on cfg.Port until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		s.hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("server_shutdown", "error", err.Error())
		}
	}()

	if s.cfg.Port == 0 {
		if addr, ok := ln.Addr().(*net.TCPAddr); ok {
			s.cfg.Port = addr.Port
		}
	}
	logging.ServerStartup("http", "http", s.cfg.Port,
		"websocket", "/ws/search",
		"rate_limit", s.cfg.RateLimitRequests,
		"search_cache", s.cache != nil)

	err := srv.Serve(ln)
	cancel()
	<-shutdownDone
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Start loads src into st in the background and serves until ctx is done.
// Requests arriving before the load finishes see an empty corpus.
func Start(ctx context.Context, cfg Config, st *store.Store, src store.Source) error {
	s := NewServer(st, cfg)
	go func() {
		if err := st.Initialize(ctx, src); err != nil {
			logging.Error("corpus_unavailable", "error", err.Error())
		}
		s.NotifyStatus()
	}()
	return s.ListenAndServe(ctx)
}
