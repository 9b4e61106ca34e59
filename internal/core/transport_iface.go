package core

import (
	"context"
	"fmt"

	"github.com/dkeye/wsprobe/internal/domain"
)

// Dialer opens one client-side realtime connection.
type Dialer interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// Conn is a dialed realtime connection.
// ReadText must only be called from one goroutine. RequestClose and Close
// may be called concurrently with everything else.
type Conn interface {
	// ReadText blocks until the next message arrives. Once the connection
	// is finished it returns a *ClosedError.
	ReadText() ([]byte, error)
	WriteText(data []byte) error
	// RequestClose starts the closing handshake.
	RequestClose(code int, reason string) error
	Close() error
}

// ClosedError reports that a Conn has ended and how.
type ClosedError struct {
	Info domain.CloseInfo
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("connection closed: code=%d reason=%q clean=%t", e.Info.Code, e.Info.Reason, e.Info.WasClean)
}

// EventKind names a lifecycle event delivered to the observer.
type EventKind int

const (
	EventOpen EventKind = iota + 1
	EventMessage
	EventError
	EventClose
	// EventCloseRequest is raised locally by the timeout guard or shutdown.
	EventCloseRequest
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventMessage:
		return "message"
	case EventError:
		return "error"
	case EventClose:
		return "close"
	case EventCloseRequest:
		return "close_request"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

type Event struct {
	Kind  EventKind
	Data  []byte
	Err   error
	Close domain.CloseInfo
	// Conn is set on EventOpen only.
	Conn Conn
}
