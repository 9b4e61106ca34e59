package core

import "github.com/dkeye/wsprobe/internal/domain"

type SessionID string

// PeerSession binds domain.Peer and its signal endpoint.
type PeerSession interface {
	Meta() *domain.Peer
	Signal() SignalConnection
}

type peerSession struct {
	meta   *domain.Peer
	signal SignalConnection
}

func NewPeerSession(meta *domain.Peer, signal SignalConnection) PeerSession {
	return &peerSession{meta: meta, signal: signal}
}

func (s *peerSession) Meta() *domain.Peer        { return s.meta }
func (s *peerSession) Signal() SignalConnection { return s.signal }
