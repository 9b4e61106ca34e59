package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

func newSession(id string, at time.Time) core.PeerSession {
	p := domain.NewPeer(domain.PeerID(id), "127.0.0.1:1")
	p.ConnectedAt = at
	return core.NewPeerSession(p, nopSignal{})
}

func TestRegistryBindAndUnbind(t *testing.T) {
	r := NewRegistry()
	sess := newSession("a", time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	r.BindSignal("a", sess, cancel)

	got, ok := r.GetSession("a")
	require.True(t, ok)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, r.Count())

	assert.True(t, r.Cancel("a"))
	assert.Error(t, ctx.Err())
	assert.False(t, r.Cancel("missing"))

	r.Unbind("a", sess)
	_, ok = r.GetSession("a")
	assert.False(t, ok)
}

func TestRegistryRebindCancelsPrevious(t *testing.T) {
	r := NewRegistry()
	first := newSession("a", time.Now())
	firstCtx, firstCancel := context.WithCancel(context.Background())
	r.BindSignal("a", first, firstCancel)

	second := newSession("a", time.Now())
	_, secondCancel := context.WithCancel(context.Background())
	defer secondCancel()
	r.BindSignal("a", second, secondCancel)

	assert.Error(t, firstCtx.Err())

	// the stale session's read loop exiting must not unbind the new one
	r.Unbind("a", first)
	got, ok := r.GetSession("a")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistryPeersOrdered(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.BindSignal("late", newSession("late", now.Add(time.Second)), nil)
	r.BindSignal("early", newSession("early", now), nil)

	peers := r.Peers()
	require.Len(t, peers, 2)
	assert.Equal(t, domain.PeerID("early"), peers[0].ID)
	assert.Equal(t, domain.PeerID("late"), peers[1].ID)
}

func TestRegistryCancelAll(t *testing.T) {
	r := NewRegistry()
	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	r.BindSignal("a", newSession("a", time.Now()), cancelA)
	r.BindSignal("b", newSession("b", time.Now()), cancelB)

	r.CancelAll()
	assert.Error(t, ctxA.Err())
	assert.Error(t, ctxB.Err())
}
