package ws

import (
	"errors"

	"github.com/gorilla/websocket"

	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
)

// ErrorMapper normalizes read errors to *core.ClosedError.
type ErrorMapper interface {
	Map(err error) error
}

type DefaultErrorMapper struct{}

// Map treats a received close frame as a clean close and everything else
// (EOF, reset, local Close) as an abnormal one.
func (DefaultErrorMapper) Map(err error) error {
	if err == nil {
		return nil
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return &core.ClosedError{Info: domain.CloseInfo{
			Code:     ce.Code,
			Reason:   ce.Text,
			WasClean: ce.Code != websocket.CloseAbnormalClosure,
		}}
	}
	info := domain.AbnormalClose()
	info.Reason = err.Error()
	return &core.ClosedError{Info: info}
}
