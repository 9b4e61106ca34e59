package orch

import (
	"context"
	"sync"

	"github.com/dkeye/wsprobe/internal/app"
	"github.com/dkeye/wsprobe/internal/core"
	"github.com/rs/zerolog/log"
)

// Orchestrator ties signal sessions to the registry and applies the
// backpressure policy.
type Orchestrator struct {
	Registry *app.Registry
	Policy   app.Policy

	mu      sync.Mutex
	dropped map[core.SessionID]int
}

func New(reg *app.Registry, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Policy:   policy,
		dropped:  make(map[core.SessionID]int),
	}
}

func (o *Orchestrator) OnConnect(sid core.SessionID, sess core.PeerSession, cancel context.CancelFunc) {
	o.Registry.BindSignal(sid, sess, cancel)
}

func (o *Orchestrator) OnDisconnect(sid core.SessionID, sess core.PeerSession) {
	o.Registry.Unbind(sid, sess)
	o.mu.Lock()
	delete(o.dropped, sid)
	o.mu.Unlock()
}

// OnBackPressure is called when a frame for sid could not be queued.
func (o *Orchestrator) OnBackPressure(sid core.SessionID, sess core.PeerSession) app.BackpressureAction {
	o.mu.Lock()
	o.dropped[sid]++
	n := o.dropped[sid]
	o.mu.Unlock()

	if o.Policy == nil {
		return app.NoAction
	}
	action := o.Policy.OnBackPressure(sess, n)
	log.Warn().Str("module", "orch").Str("sid", string(sid)).Int("dropped", n).Str("action", action.String()).Msg("backpressure")
	if action == app.KickSession {
		o.KickBySID(sid)
	}
	return action
}

func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.Registry.Cancel(sid)
}

func (o *Orchestrator) Shutdown() {
	o.Registry.CancelAll()
}
