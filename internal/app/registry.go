package app

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Session core.PeerSession
	Cancel  context.CancelFunc
}

// Registry tracks live signal sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

// BindSignal registers sess under sid. A previous session with the same sid
// is cancelled, so one browser tab reconnecting does not leave a ghost.
func (r *Registry) BindSignal(sid core.SessionID, sess core.PeerSession, cancel context.CancelFunc) {
	r.mu.Lock()
	old, replaced := r.sessions[sid]
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	r.mu.Unlock()

	if replaced && old.Cancel != nil {
		old.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Bool("replaced", replaced).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.PeerSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind removes sid only if it still maps to sess.
func (r *Registry) Unbind(sid core.SessionID, sess core.PeerSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.Session != sess {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Peers returns a snapshot ordered by connect time.
func (r *Registry) Peers() []domain.Peer {
	r.mu.RLock()
	out := make([]domain.Peer, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, *e.Session.Meta())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ConnectedAt.Before(out[j].ConnectedAt)
	})
	return out
}

// CancelAll ends every session, used on shutdown.
func (r *Registry) CancelAll() {
	r.mu.RLock()
	cancels := make([]context.CancelFunc, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.Cancel != nil {
			cancels = append(cancels, e.Cancel)
		}
	}
	r.mu.RUnlock()

	for _, cancel := range cancels {
		cancel()
	}
}
