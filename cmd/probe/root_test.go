package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/wsprobe/internal/adapters/ws"
	"github.com/dkeye/wsprobe/internal/app/probe"
)

func TestExecuteInvalidAddressIsLogOnly(t *testing.T) {
	logger := zerolog.Nop()
	p := probe.New(ws.NewDialer(time.Second), probe.Options{Addr: "http://localhost:8080", Logger: &logger})
	assert.NoError(t, execute(context.Background(), p))
}

func TestRootCmdRunsAgainstEchoPeer(t *testing.T) {
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(`{"type":"pong"}`)); err != nil {
				return
			}
		}
	}))
	defer srv.Close()
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "none")

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"--addr", "ws" + strings.TrimPrefix(srv.URL, "http"),
		"--close-after", "100ms",
		"--close-grace", "100ms",
		"--log-level", "error",
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
}

func TestRootCmdRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	assert.Error(t, cmd.Execute())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
