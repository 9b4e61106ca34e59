package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/wsprobe/internal/domain"
)

func TestEncodePing(t *testing.T) {
	b, err := Encode(domain.NewPing())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ping"}`, string(b))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    any
		wantErr bool
	}{
		{name: "object", raw: `{"type":"pong"}`, want: map[string]any{"type": "pong"}},
		{name: "array", raw: `[1,"a"]`, want: []any{float64(1), "a"}},
		{name: "string", raw: `"hello"`, want: "hello"},
		{name: "plain text", raw: `hello there`, wantErr: true},
		{name: "truncated", raw: `{"type":`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvelope(t *testing.T) {
	env, err := Envelope([]byte(`{"type":"whoami","extra":1}`))
	require.NoError(t, err)
	assert.Equal(t, domain.MsgWhoAmI, env.Type)

	_, err = Envelope([]byte(`nope`))
	assert.ErrorIs(t, err, ErrMalformed)
}
