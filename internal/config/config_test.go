package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/harbor/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	p := write(t, "harbor.yaml", `
log_level: debug
max_steps: 40
checkpointer:
  kind: redis
  addr: localhost:6379
  ttl: 1h
http:
  addr: ":9000"
`)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep their defaults")
	assert.Equal(t, 40, cfg.MaxSteps)
	assert.Equal(t, config.KindRedis, cfg.Checkpointer.Kind)
	assert.Equal(t, time.Hour, cfg.Checkpointer.TTL)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestLoad_JSON(t *testing.T) {
	p := write(t, "harbor.json", `{"checkpointer": {"kind": "file", "dir": "/tmp/threads"}}`)
	cfg, err := config.Load(p)
	require.NoError(t, err)
	assert.Equal(t, config.KindFile, cfg.Checkpointer.Kind)
	assert.Equal(t, "/tmp/threads", cfg.Checkpointer.Dir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"level", func(c *config.Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"steps", func(c *config.Config) { c.MaxSteps = 0 }, "MaxSteps"},
		{"kind", func(c *config.Config) { c.Checkpointer.Kind = "etcd" }, "Kind"},
		{"redis addr", func(c *config.Config) { c.Checkpointer.Kind = config.KindRedis }, "Addr"},
		{"http addr", func(c *config.Config) { c.HTTP.Addr = "" }, "HTTP.Addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := config.Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
	assert.NoError(t, config.Validate(config.Default()))
}
