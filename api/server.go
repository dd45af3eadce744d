// Package api provides the HTTP server for stockdash.
//
// It serves the server-rendered dashboard page, a WebSocket channel for
// live re-renders, a JSON view of the dashboard and a few cache admin
// endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/report"
	"github.com/seenimoa/stockdash/pkg/models"
	"github.com/seenimoa/stockdash/web"
)

// CacheAdmin is the provider memo as seen by the admin endpoints.
type CacheAdmin interface {
	Stats() provider.Stats
	Flush()
	Invalidate(symbol string) int
	OnFlush(fn func())
}

// Options configures a Server.
type Options struct {
	Config   *config.Config
	Renderer *dashboard.Renderer
	Cache    CacheAdmin // optional; admin endpoints answer 503 without it
	Page     report.PageConfig
	Logger   *slog.Logger
	Version  string
}

// Server is the HTTP server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	renderer *dashboard.Renderer
	cache    CacheAdmin
	pageCfg  report.PageConfig
	sessions *sessionStore
	wsHub    *WSHub
	log      *slog.Logger
	version  string
	started  time.Time
}

// NewServer creates a configured server with all routes and middleware.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("api: config is required")
	}
	if opts.Renderer == nil {
		return nil, errors.New("api: renderer is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Page.LiveURL == "" && opts.Page.StaticURL == "" {
		opts.Page = report.DefaultPageConfig()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	cfg := opts.Config
	defaultPeriod, err := models.ParsePeriod(cfg.Dashboard.DefaultPeriod)
	if err != nil {
		defaultPeriod = models.PeriodQuarterly
	}

	srv := &Server{
		cfg:      cfg,
		renderer: opts.Renderer,
		cache:    opts.Cache,
		pageCfg:  opts.Page,
		sessions: newSessionStore(cfg.Dashboard.DefaultSymbol, defaultPeriod, sessionIdle),
		wsHub:    NewWSHub(),
		log:      opts.Logger,
		version:  opts.Version,
		started:  time.Now(),
	}
	if srv.cache != nil {
		srv.cache.OnFlush(func() {
			srv.wsHub.Broadcast(WSMessage{Type: MsgFlushed})
		})
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.sessions.sweepEvery(ctx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s.wsHub.CloseAll()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Live channel; long-lived, so outside the request timeout.
	r.Get("/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(120 * time.Second))

		// Dashboard page
		r.Get("/", s.handleDashboard)
		r.Post("/summary/toggle", s.handleToggleSummary)

		// Health check
		r.Get("/health", s.handleHealth)

		// API v1 routes
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/health", s.handleHealth)

			// Dashboard as JSON
			r.Get("/dashboard/{symbol}", s.handleDashboardJSON)

			// Configuration
			r.Get("/config", s.handleGetConfig)

			// Cache
			r.Get("/cache/stats", s.handleCacheStats)
			r.Post("/cache/flush", s.handleCacheFlush)
			r.Delete("/cache/{symbol}", s.handleCacheInvalidate)
		})
	})

	// Embedded stylesheet and script
	s.mountStatic(r)

	return r
}

// mountStatic serves the embedded static assets under the page's
// StaticURL prefix.
func (s *Server) mountStatic(r chi.Router) {
	prefix := strings.TrimSuffix(s.pageCfg.StaticURL, "/")
	if prefix == "" {
		return
	}
	fileServer := http.StripPrefix(prefix+"/", http.FileServerFS(web.StaticFS()))

	r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Provider  string          `json:"provider,omitempty"`
	Uptime    string          `json:"uptime"`
	Sessions  int             `json:"sessions"`
	LiveConns int             `json:"live_connections"`
	Cache     *provider.Stats `json:"cache,omitempty"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Version:   s.version,
		Provider:  s.renderer.ProviderName(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Sessions:  s.sessions.Len(),
		LiveConns: s.wsHub.ClientCount(),
	}
	if s.cache != nil {
		stats := s.cache.Stats()
		resp.Cache = &stats
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleDashboard renders the full page for the caller's session. The
// symbol and period query parameters update the session first.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	q := r.URL.Query()

	st := sess.update(func(st *dashboard.SessionState) {
		if q.Has("symbol") {
			st.SetSymbol(q.Get("symbol"))
		}
		if p := q.Get("period"); p != "" {
			if err := st.SetPeriod(p); err != nil {
				s.log.Debug("ignoring period", "period", p, "error", err)
			}
		}
	})

	page := s.renderer.Render(r.Context(), &st)
	html, err := report.GenerateHTML(page, s.pageCfg)
	if err != nil {
		s.log.Error("render page", "symbol", st.Symbol, "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html)) //nolint:errcheck
}

// handleToggleSummary flips the Read more / Show less state and sends
// the browser back to the page.
func (s *Server) handleToggleSummary(w http.ResponseWriter, r *http.Request) {
	s.session(w, r).update(func(st *dashboard.SessionState) {
		st.ToggleSummary()
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleDashboardJSON renders one symbol without touching any session.
func (s *Server) handleDashboardJSON(w http.ResponseWriter, r *http.Request) {
	symbol := models.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err := provider.ValidateSymbol(symbol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := dashboard.NewSessionState(symbol, s.sessions.period)
	if p := r.URL.Query().Get("period"); p != "" {
		if err := st.SetPeriod(p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	st.ShowFullSummary = r.URL.Query().Get("full") == "true"

	page := s.renderer.Render(r.Context(), st)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: page})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
