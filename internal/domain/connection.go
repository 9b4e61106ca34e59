package domain

import "fmt"

// ConnState is the lifecycle state of one realtime connection.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Close codes from RFC 6455, section 7.4.1.
const (
	CloseNormal    = 1000
	CloseGoingAway = 1001
	CloseNoStatus  = 1005
	CloseAbnormal  = 1006
)

// CloseInfo describes how a connection ended.
// WasClean is set only when the closing handshake completed.
type CloseInfo struct {
	Code     int
	Reason   string
	WasClean bool
}

// AbnormalClose is reported when the transport dropped without a close frame.
func AbnormalClose() CloseInfo {
	return CloseInfo{Code: CloseAbnormal}
}
