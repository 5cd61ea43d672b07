package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gostem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "russian", cfg.Analysis.Analyzer)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, int64(512<<20), cfg.Index.MemoryLimit)
	assert.True(t, cfg.Metrics.Enabled)

	host, port, err := cfg.Server.HostPort()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 8080, port)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
  format: text
analysis:
  analyzer: lowercase
  stopwords: true
index:
  dir: /var/lib/gostem
  workers: 8
search:
  timeout: 250ms
server:
  addr: ":9090"
`)
	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "lowercase", cfg.Analysis.Analyzer)
	assert.True(t, cfg.Analysis.StopWords)
	assert.Equal(t, "/var/lib/gostem", cfg.Index.Dir)
	assert.Equal(t, 8, cfg.Index.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Timeout)
	assert.Equal(t, 50, cfg.Search.MaxResults)

	host, port, err := cfg.Server.HostPort()
	require.NoError(t, err)
	assert.Empty(t, host)
	assert.Equal(t, 9090, port)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "index:\n  workers: 8\nserver:\n  addr: 0.0.0.0:1000\n")
	t.Setenv("GOSTEM_SERVER_ADDR", "0.0.0.0:2000")
	t.Setenv("GOSTEM_INDEX_WORKERS", "3")

	v := NewViper()
	v.Set("index.workers", 5) // as a bound flag would
	cfg, err := Load(v, path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:2000", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Index.Workers)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NoFileFound(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, Default().Index, cfg.Index)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"analyzer", func(c *Config) { c.Analysis.Analyzer = "porter" }},
		{"workers", func(c *Config) { c.Index.Workers = 0 }},
		{"memory", func(c *Config) { c.Index.MemoryLimit = 0 }},
		{"cache", func(c *Config) { c.Search.CacheSize = -1 }},
		{"results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"expansions", func(c *Config) { c.Search.MaxExpansions = 0 }},
		{"timeout", func(c *Config) { c.Search.Timeout = -time.Second }},
		{"addr", func(c *Config) { c.Server.Addr = "localhost" }},
		{"port", func(c *Config) { c.Server.Addr = "localhost:http" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "analysis:\n  analyzer: porter\n")
	_, err := Load(NewViper(), path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Search.Timeout = 1500 * time.Millisecond
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "timeout: 1.5s")

	var generic map[string]any
	require.NoError(t, yaml.Unmarshal(out, &generic))
	assert.Contains(t, generic, "server")

	loaded, err := Load(NewViper(), writeFile(t, string(out)))
	require.NoError(t, err)
	loaded.File = ""
	assert.Equal(t, cfg, loaded)
}
