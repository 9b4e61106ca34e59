package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
)

func TestStep(t *testing.T) {
	tests := []struct {
		name    string
		state   domain.ConnState
		event   core.EventKind
		want    domain.ConnState
		effects []Effect
	}{
		{"open sends control", domain.StateConnecting, core.EventOpen, domain.StateOpen, []Effect{EffectSendControl}},
		{"second open ignored", domain.StateOpen, core.EventOpen, domain.StateOpen, nil},
		{"message while open", domain.StateOpen, core.EventMessage, domain.StateOpen, []Effect{EffectDecode}},
		{"message while closing", domain.StateClosing, core.EventMessage, domain.StateClosing, []Effect{EffectDecode}},
		{"message before open", domain.StateConnecting, core.EventMessage, domain.StateConnecting, nil},
		{"error while connecting", domain.StateConnecting, core.EventError, domain.StateConnecting, []Effect{EffectLogError}},
		{"error while open", domain.StateOpen, core.EventError, domain.StateOpen, []Effect{EffectLogError}},
		{"close request while open", domain.StateOpen, core.EventCloseRequest, domain.StateClosing, []Effect{EffectRequestClose}},
		{"close request while connecting", domain.StateConnecting, core.EventCloseRequest, domain.StateClosing, []Effect{EffectRequestClose}},
		{"close request while closing", domain.StateClosing, core.EventCloseRequest, domain.StateClosing, nil},
		{"close from connecting", domain.StateConnecting, core.EventClose, domain.StateClosed, []Effect{EffectLogClose, EffectTerminate}},
		{"close from open", domain.StateOpen, core.EventClose, domain.StateClosed, []Effect{EffectLogClose, EffectTerminate}},
		{"close from closing", domain.StateClosing, core.EventClose, domain.StateClosed, []Effect{EffectLogClose, EffectTerminate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, effects := Step(tt.state, tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.effects, effects)
		})
	}
}

func TestStepClosedIsTerminal(t *testing.T) {
	for _, ev := range []core.EventKind{core.EventOpen, core.EventMessage, core.EventError, core.EventCloseRequest, core.EventClose} {
		got, effects := Step(domain.StateClosed, ev)
		assert.Equal(t, domain.StateClosed, got, ev.String())
		assert.Empty(t, effects, ev.String())
	}
}
