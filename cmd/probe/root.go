package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/wsprobe/internal/adapters/ws"
	"github.com/dkeye/wsprobe/internal/app/probe"
	"github.com/dkeye/wsprobe/internal/config"
	"github.com/dkeye/wsprobe/internal/domain"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "probe",
		Short:         "Smoke-test a realtime endpoint",
		Long:          "Opens one WebSocket connection, sends a single control message, logs every reply and closes after a fixed delay.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runProbe,
	}

	f := cmd.Flags()
	f.String("addr", probe.DefaultAddr, "endpoint address (ws:// or wss://)")
	f.Duration("close-after", probe.DefaultCloseAfter, "close the connection after this long")
	f.Duration("close-grace", 0, "how long to wait for the peer to finish the closing handshake")
	f.String("type", domain.MsgPing, "control message type to send on open")
	f.String("log-level", "info", "log level")

	for flag, key := range map[string]string{
		"addr":        "probe.addr",
		"close-after": "probe.close_after",
		"close-grace": "probe.close_grace",
		"type":        "probe.type",
		"log-level":   "log_level",
	} {
		_ = f.SetAnnotation(flag, config.KeyAnnotation, []string{key})
	}
	return cmd
}

func runProbe(cmd *cobra.Command, _ []string) error {
	lvl, _ := cmd.Flags().GetString("log-level")
	config.SetupLogger(lvl)

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	config.SetupLogger(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p := probe.New(ws.NewDialer(cfg.Probe.CloseGrace), probe.Options{
		Addr:       cfg.Probe.Addr,
		CloseAfter: cfg.Probe.CloseAfter,
		Message:    domain.ControlMessage{Type: cfg.Probe.Type},
	})
	return execute(ctx, p)
}

// execute treats every connection-level failure as log-only: the run is
// successful once the close event was handled, and a bad address is
// reported without a retry.
func execute(ctx context.Context, p *probe.Probe) error {
	if err := p.Start(ctx); err != nil {
		if errors.Is(err, probe.ErrInvalidAddress) {
			log.Error().Err(err).Str("module", "probe").Msg("cannot create connection")
			return nil
		}
		return err
	}
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Str("module", "probe").
		Str("probe_id", res.ID).
		Int("sent", res.Sent).
		Int("received", res.Received).
		Int("malformed", res.Malformed).
		Int("errors", res.Errors).
		Bool("timed_out", res.TimedOut).
		Msg("probe finished")
	return nil
}
