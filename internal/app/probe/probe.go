// Package probe runs a single realtime connection through its lifecycle:
// open, send one control message, log what comes back, and close after a
// fixed delay.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/wsprobe/internal/codec"
	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
)

const (
	DefaultAddr       = "ws://localhost:8080"
	DefaultCloseAfter = 5 * time.Second
)

var (
	ErrInvalidAddress = errors.New("invalid realtime address")
	ErrAlreadyStarted = errors.New("probe already started")
	ErrNotStarted     = errors.New("probe not started")
)

var (
	guardClose    = domain.CloseInfo{Code: domain.CloseNormal, Reason: "probe timeout"}
	shutdownClose = domain.CloseInfo{Code: domain.CloseGoingAway, Reason: "shutdown"}
)

type Options struct {
	Addr string
	// CloseAfter is measured from Start. Zero means DefaultCloseAfter.
	CloseAfter time.Duration
	// Message is sent once the connection opens. Zero value means ping.
	Message domain.ControlMessage
	Logger  *zerolog.Logger
}

// Result summarizes one run.
type Result struct {
	ID        string
	Close     domain.CloseInfo
	Sent      int
	Received  int
	Malformed int
	Errors    int
	TimedOut  bool
}

// Probe owns one connection and its timeout guard. All lifecycle events are
// handled on the goroutine that calls Run.
type Probe struct {
	id         string
	addr       string
	closeAfter time.Duration
	msg        domain.ControlMessage
	dialer     core.Dialer
	log        zerolog.Logger

	events chan core.Event
	done   chan struct{}
	wg     sync.WaitGroup

	state      atomic.Int32
	started    atomic.Bool
	conn       core.Conn
	cancelDial context.CancelFunc
	guard      *time.Timer
	closeReq   domain.CloseInfo
	res        Result
}

func New(dialer core.Dialer, opts Options) *Probe {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.CloseAfter <= 0 {
		opts.CloseAfter = DefaultCloseAfter
	}
	if opts.Message.Type == "" {
		opts.Message = domain.NewPing()
	}
	base := log.Logger
	if opts.Logger != nil {
		base = *opts.Logger
	}
	id := uuid.NewString()
	p := &Probe{
		id:         id,
		addr:       opts.Addr,
		closeAfter: opts.CloseAfter,
		msg:        opts.Message,
		dialer:     dialer,
		log:        base.With().Str("module", "probe").Str("probe_id", id).Logger(),
		events:     make(chan core.Event, 16),
		done:       make(chan struct{}),
		res:        Result{ID: id},
	}
	p.state.Store(int32(domain.StateConnecting))
	return p
}

// ValidateAddr reports whether addr is a usable ws:// or wss:// URI.
func ValidateAddr(addr string) error {
	u, err := url.Parse(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidAddress, addr)
	}
	return nil
}

func (p *Probe) ID() string { return p.id }

func (p *Probe) State() domain.ConnState {
	return domain.ConnState(p.state.Load())
}

// Start validates the address, starts dialing in the background and arms
// the timeout guard. The probe stays connecting until Run dispatches the
// first event.
func (p *Probe) Start(ctx context.Context) error {
	if err := ValidateAddr(p.addr); err != nil {
		return err
	}
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	p.log.Info().Str("addr", p.addr).Dur("close_after", p.closeAfter).Msg("connecting")

	dialCtx, cancel := context.WithCancel(ctx)
	p.cancelDial = cancel
	p.guard = time.AfterFunc(p.closeAfter, func() {
		p.emit(core.Event{Kind: core.EventCloseRequest, Close: guardClose})
	})

	p.wg.Add(1)
	go p.connect(dialCtx)
	return nil
}

// Run dispatches lifecycle events until the close event has been handled.
// Cancelling ctx requests a close; Run still waits for the close event.
func (p *Probe) Run(ctx context.Context) (Result, error) {
	if !p.started.Load() {
		return Result{}, ErrNotStarted
	}
	defer p.teardown()

	ctxDone := ctx.Done()
	for {
		select {
		case <-ctxDone:
			ctxDone = nil
			p.dispatch(core.Event{Kind: core.EventCloseRequest, Close: shutdownClose})
		case ev := <-p.events:
			if p.dispatch(ev) {
				return p.res, nil
			}
		}
	}
}

func (p *Probe) connect(ctx context.Context) {
	defer p.wg.Done()

	conn, err := p.dialer.Dial(ctx, p.addr)
	if err != nil {
		p.emit(core.Event{Kind: core.EventError, Err: err})
		p.emit(core.Event{Kind: core.EventClose, Close: domain.AbnormalClose()})
		return
	}
	if !p.emit(core.Event{Kind: core.EventOpen, Conn: conn}) {
		_ = conn.Close()
		return
	}

	for {
		data, err := conn.ReadText()
		if err != nil {
			info := domain.AbnormalClose()
			var ce *core.ClosedError
			if errors.As(err, &ce) {
				info = ce.Info
			}
			if !info.WasClean {
				p.emit(core.Event{Kind: core.EventError, Err: err})
			}
			p.emit(core.Event{Kind: core.EventClose, Close: info})
			return
		}
		if !p.emit(core.Event{Kind: core.EventMessage, Data: data}) {
			return
		}
	}
}

func (p *Probe) emit(ev core.Event) bool {
	select {
	case p.events <- ev:
		return true
	case <-p.done:
		return false
	}
}

// dispatch applies one event and reports whether the run is over.
func (p *Probe) dispatch(ev core.Event) bool {
	next, effects := Step(p.State(), ev.Kind)
	p.state.Store(int32(next))

	if ev.Kind == core.EventOpen && p.conn == nil {
		p.conn = ev.Conn
		if next == domain.StateClosing {
			// close was requested while dialing
			p.closeConn()
		} else {
			p.log.Info().Msg("connection opened")
		}
	}

	for _, eff := range effects {
		switch eff {
		case EffectSendControl:
			p.sendControl()
		case EffectDecode:
			p.decode(ev.Data)
		case EffectLogError:
			p.res.Errors++
			p.log.Error().Err(ev.Err).Str("state", next.String()).Msg("transport error")
		case EffectRequestClose:
			p.closeReq = ev.Close
			if ev.Close == guardClose {
				p.res.TimedOut = true
				p.log.Warn().Dur("after", p.closeAfter).Msg("timeout reached, closing connection")
			} else {
				p.log.Info().Str("reason", ev.Close.Reason).Msg("close requested")
			}
			p.closeConn()
		case EffectLogClose:
			p.res.Close = ev.Close
			p.log.Info().
				Int("code", ev.Close.Code).
				Str("reason", ev.Close.Reason).
				Bool("clean", ev.Close.WasClean).
				Msg("connection closed")
		case EffectTerminate:
			return true
		}
	}
	return false
}

func (p *Probe) sendControl() {
	b, err := codec.Encode(p.msg)
	if err != nil {
		p.log.Error().Err(err).Msg("encode control message")
		return
	}
	if err := p.conn.WriteText(b); err != nil {
		p.log.Error().Err(err).Msg("send control message")
		return
	}
	p.res.Sent++
	p.log.Info().Str("type", p.msg.Type).Msg("control message sent")
}

func (p *Probe) decode(raw []byte) {
	p.res.Received++
	p.log.Info().Int("bytes", len(raw)).Str("raw", string(raw)).Msg("message received")

	v, err := codec.Decode(raw)
	if err != nil {
		p.res.Malformed++
		p.log.Warn().Err(err).Msg("message is not JSON")
		return
	}
	p.log.Info().Interface("payload", v).Msg("parsed message")
}

// closeConn asks the transport to close. Before the dial finished this
// cancels the dial instead.
func (p *Probe) closeConn() {
	if p.conn == nil {
		p.cancelDial()
		return
	}
	if err := p.conn.RequestClose(p.closeReq.Code, p.closeReq.Reason); err != nil {
		p.log.Error().Err(err).Msg("close request failed, dropping connection")
		_ = p.conn.Close()
	}
}

func (p *Probe) teardown() {
	close(p.done)
	p.guard.Stop()
	p.cancelDial()
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.wg.Wait()
}
