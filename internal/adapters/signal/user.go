package signal

import (
	"time"

	"github.com/dkeye/wsprobe/internal/domain"
)

func (ctl *SignalWSController) handleWhoAmI(
	conn *WsSignalConn,
) {
	peer := conn.sess.Meta()
	resp := struct {
		Type        string        `json:"type"`
		ID          domain.PeerID `json:"id"`
		RemoteAddr  string        `json:"remote_addr"`
		ConnectedAt time.Time     `json:"connected_at"`
	}{
		Type:        domain.MsgWhoAmI,
		ID:          peer.ID,
		RemoteAddr:  peer.RemoteAddr,
		ConnectedAt: peer.ConnectedAt,
	}
	ctl.sendJSON(conn, resp)
}
