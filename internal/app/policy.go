package app

import "github.com/dkeye/wsprobe/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickSession
)

func (a BackpressureAction) String() string {
	switch a {
	case DropFrame:
		return "drop_frame"
	case KickSession:
		return "kick_session"
	default:
		return "no_action"
	}
}

// Policy decides what happens to a session whose send queue is full.
type Policy interface {
	OnBackPressure(sess core.PeerSession, dropped int) BackpressureAction
}

// SimplePolicy drops frames until MaxDropped is exceeded, then kicks.
// Zero MaxDropped kicks on the first full queue.
type SimplePolicy struct {
	MaxDropped int
}

func (p SimplePolicy) OnBackPressure(_ core.PeerSession, dropped int) BackpressureAction {
	if dropped > p.MaxDropped {
		return KickSession
	}
	return DropFrame
}
