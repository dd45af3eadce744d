package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/stockdash/internal/dashboard"
	"github.com/seenimoa/stockdash/pkg/models"
)

const (
	// Sessions unused for this long are dropped.
	sessionIdle = 12 * time.Hour

	// How often idle sessions are swept.
	sweepInterval = 10 * time.Minute
)

// session is one browser session's dashboard state.
type session struct {
	mu       sync.Mutex
	state    dashboard.SessionState
	lastSeen time.Time
}

// update applies fn under the session lock and returns a copy of the
// resulting state for rendering.
func (ss *session) update(fn func(*dashboard.SessionState)) dashboard.SessionState {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if fn != nil {
		fn(&ss.state)
	}
	ss.lastSeen = time.Now()
	return ss.state
}

// sessionStore keeps session state in memory keyed by a random ID.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	symbol   string
	period   models.Period
	maxIdle  time.Duration
}

func newSessionStore(symbol string, period models.Period, maxIdle time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		symbol:   symbol,
		period:   period,
		maxIdle:  maxIdle,
	}
}

// lookup returns the session for id, creating a fresh one under a new
// ID when id is unknown. created reports whether that happened.
func (st *sessionStore) lookup(id string) (ss *session, sid string, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if ss, ok := st.sessions[id]; ok && id != "" {
		return ss, id, false
	}
	sid = uuid.NewString()
	ss = &session{
		state:    *dashboard.NewSessionState(st.symbol, st.period),
		lastSeen: time.Now(),
	}
	st.sessions[sid] = ss
	return ss, sid, true
}

// Len returns the number of live sessions.
func (st *sessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep drops sessions idle since before now-maxIdle.
func (st *sessionStore) sweep(now time.Time) int {
	cutoff := now.Add(-st.maxIdle)

	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, ss := range st.sessions {
		ss.mu.Lock()
		idle := ss.lastSeen.Before(cutoff)
		ss.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

func (st *sessionStore) sweepEvery(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.sweep(now)
		}
	}
}

// session resolves the caller's session from its cookie, issuing a new
// cookie when there is none.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	ss, sid, created := s.sessions.lookup(s.sessionID(r))
	if created {
		http.SetCookie(w, s.sessionCookie(sid))
	}
	return ss
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.cookieName())
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) sessionCookie(sid string) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName(),
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) cookieName() string {
	if s.cfg.API.SessionCookie != "" {
		return s.cfg.API.SessionCookie
	}
	return "stockdash_session"
}
