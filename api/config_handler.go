// Package api: configuration and cache management endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/models"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config    *config.Config `json:"config"`
	EnvPrefix string         `json:"env_prefix"`
}

// CacheFlushResponse is returned by the cache mutation endpoints.
type CacheFlushResponse struct {
	Symbol  string `json:"symbol,omitempty"`
	Removed int    `json:"removed"`
}

// handleGetConfig returns the running configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:    s.cfg,
			EnvPrefix: config.EnvPrefix,
		},
	})
}

// handleCacheStats reports memo entries and hit counts.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireCache(w) {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.cache.Stats()})
}

// handleCacheFlush forgets every memoized dataset. Live pages are told
// to refresh.
func (s *Server) handleCacheFlush(w http.ResponseWriter, r *http.Request) {
	if !s.requireCache(w) {
		return
	}
	removed := s.cache.Stats().Entries
	s.cache.Flush()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: CacheFlushResponse{Removed: removed}})
}

// handleCacheInvalidate forgets the datasets of one symbol.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if !s.requireCache(w) {
		return
	}
	symbol := models.NormalizeSymbol(chi.URLParam(r, "symbol"))
	if err := provider.ValidateSymbol(symbol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := s.cache.Invalidate(symbol)
	s.log.Info("cache invalidated", "symbol", symbol, "entries", n)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: CacheFlushResponse{Symbol: symbol, Removed: n}})
}

func (s *Server) requireCache(w http.ResponseWriter) bool {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return false
	}
	return true
}
