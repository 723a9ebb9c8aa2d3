package config

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "config.yml")
    require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
    return path
}

func TestLoadDefaults(t *testing.T) {
    conf, err := Load("")
    require.NoError(t, err)
    assert.Equal(t, "info", conf.LogLevel)
    assert.Equal(t, ":8080", conf.HTTP.Addr)
    assert.Empty(t, conf.HTTP.AllowedOrigin)
    assert.Equal(t, 15*time.Second, conf.HTTP.Heartbeat)
    assert.Equal(t, 5*time.Second, conf.HTTP.ShutdownTimeout)
    assert.Equal(t, time.Hour, conf.Sessions.TTL)
    assert.Equal(t, 5*time.Minute, conf.Sessions.SweepInterval)
}

func TestLoadFile(t *testing.T) {
    path := writeConfig(t, `
log-level: debug
http:
  addr: ":9000"
  allowed-origin: "https://ttt.example"
  heartbeat: 30s
sessions:
  ttl: 10m
`)
    conf, err := Load(path)
    require.NoError(t, err)
    assert.Equal(t, "debug", conf.LogLevel)
    assert.Equal(t, ":9000", conf.HTTP.Addr)
    assert.Equal(t, "https://ttt.example", conf.HTTP.AllowedOrigin)
    assert.Equal(t, 30*time.Second, conf.HTTP.Heartbeat)
    assert.Equal(t, 5*time.Second, conf.HTTP.ShutdownTimeout, "unset keys keep their default")
    assert.Equal(t, 10*time.Minute, conf.Sessions.TTL)
    assert.Equal(t, 5*time.Minute, conf.Sessions.SweepInterval)
}

func TestEnvOverridesFile(t *testing.T) {
    path := writeConfig(t, "http:\n  addr: \":9000\"\n")
    t.Setenv("HTTP_ADDR", ":7000")
    t.Setenv("SESSION_TTL", "2h")

    conf, err := Load(path)
    require.NoError(t, err)
    assert.Equal(t, ":7000", conf.HTTP.Addr)
    assert.Equal(t, 2*time.Hour, conf.Sessions.TTL)
}

func TestLoadErrors(t *testing.T) {
    _, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
    assert.Error(t, err)

    path := writeConfig(t, "http:\n  heartbeat: soon\n")
    _, err = Load(path)
    assert.Error(t, err)

    t.Setenv("SESSION_TTL", "forever")
    _, err = Load("")
    assert.Error(t, err)
}

func TestMustLoadPanics(t *testing.T) {
    assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yml")) })
}

func TestUsageListsEnv(t *testing.T) {
    text := Usage()
    assert.Contains(t, text, "HTTP_ADDR")
    assert.Contains(t, text, "SESSION_SWEEP_INTERVAL")
}
