package signal

import "github.com/dkeye/wsprobe/internal/domain"

func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: domain.MsgPong,
	}
	ctl.sendJSON(conn, resp)
}
