package probe

import (
	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
)

// Effect is a side effect the dispatch loop runs after a transition.
type Effect int

const (
	EffectSendControl Effect = iota + 1
	EffectDecode
	EffectLogError
	EffectRequestClose
	EffectLogClose
	EffectTerminate
)

func (e Effect) String() string {
	switch e {
	case EffectSendControl:
		return "send_control"
	case EffectDecode:
		return "decode"
	case EffectLogError:
		return "log_error"
	case EffectRequestClose:
		return "request_close"
	case EffectLogClose:
		return "log_close"
	case EffectTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Step is the lifecycle transition function. Closed is terminal.
func Step(state domain.ConnState, ev core.EventKind) (domain.ConnState, []Effect) {
	if state == domain.StateClosed {
		return state, nil
	}

	switch ev {
	case core.EventOpen:
		if state != domain.StateConnecting {
			return state, nil
		}
		return domain.StateOpen, []Effect{EffectSendControl}

	case core.EventMessage:
		if state == domain.StateConnecting {
			return state, nil
		}
		return state, []Effect{EffectDecode}

	case core.EventError:
		return state, []Effect{EffectLogError}

	case core.EventCloseRequest:
		if state == domain.StateClosing {
			return state, nil
		}
		return domain.StateClosing, []Effect{EffectRequestClose}

	case core.EventClose:
		return domain.StateClosed, []Effect{EffectLogClose, EffectTerminate}
	}
	return state, nil
}
