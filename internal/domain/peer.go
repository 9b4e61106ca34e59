// Package domain contains entity without logic, just meta-data
package domain

import "time"

type PeerID string

// Peer is the server-side view of one connected signal session.
// No transport or lifecycle logic here.
type Peer struct {
	ID          PeerID    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
}

func NewPeer(id PeerID, remoteAddr string) *Peer {
	return &Peer{ID: id, RemoteAddr: remoteAddr, ConnectedAt: time.Now()}
}
