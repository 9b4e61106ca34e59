package domain

// Message types understood by the signal endpoint.
const (
	MsgPing   = "ping"
	MsgPong   = "pong"
	MsgWhoAmI = "whoami"
	MsgError  = "error"
)

// ControlMessage is a tagged payload. Built per send and never retained.
type ControlMessage struct {
	Type string `json:"type"`
}

// NewPing avoids raw literals at call sites.
func NewPing() ControlMessage {
	return ControlMessage{Type: MsgPing}
}
