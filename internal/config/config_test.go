package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, body string) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config."+env+".yaml"), []byte(body), 0o644))
	t.Setenv("CONFIG_ENV", env)
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(32768), cfg.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Equal(t, 20, cfg.RateLimit)
	assert.Equal(t, time.Second, cfg.RateInterval)
	assert.Equal(t, "ws://localhost:8080", cfg.Probe.Addr)
	assert.Equal(t, 5*time.Second, cfg.Probe.CloseAfter)
	assert.Equal(t, time.Second, cfg.Probe.CloseGrace)
	assert.Equal(t, "ping", cfg.Probe.Type)
}

func TestLoadFileAndEnv(t *testing.T) {
	writeConfig(t, "test", `
mode: debug
port: 9090
ping_period: 10s
probe:
  addr: ws://example.test:9090/api/ws/signal
  close_after: 2s
`)
	t.Setenv("WSPROBE_PROBE_TYPE", "whoami")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.PingPeriod)
	assert.Equal(t, "ws://example.test:9090/api/ws/signal", cfg.Probe.Addr)
	assert.Equal(t, 2*time.Second, cfg.Probe.CloseAfter)
	assert.Equal(t, "whoami", cfg.Probe.Type)
}

func TestLoadFlagsOverride(t *testing.T) {
	writeConfig(t, "test", "probe:\n  addr: ws://from-file:1\n")

	fs := pflag.NewFlagSet("probe", pflag.ContinueOnError)
	fs.String("addr", "", "")
	fs.Duration("close-after", 0, "")
	require.NoError(t, fs.SetAnnotation("addr", KeyAnnotation, []string{"probe.addr"}))
	require.NoError(t, fs.SetAnnotation("close-after", KeyAnnotation, []string{"probe.close_after"}))
	require.NoError(t, fs.Parse([]string{"--addr", "ws://from-flag:2"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "ws://from-flag:2", cfg.Probe.Addr)
	// unset flag keeps the default
	assert.Equal(t, 5*time.Second, cfg.Probe.CloseAfter)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
