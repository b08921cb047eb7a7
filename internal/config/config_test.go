package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "REDIS_ADDR", "REDIS_TTL", "POSTGRES_DSN", "TICK_TCP_ADDRS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "120s", cfg.Redis.TTL)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Sources.TCPAddrs)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("TICK_TCP_ADDRS", "10.0.0.1:40101, 10.0.0.2:40102")

	cfg := FromEnv()
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"10.0.0.1:40101", "10.0.0.2:40102"}, cfg.Sources.TCPAddrs)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"http_port": 8181,
		"redis": {"addr": "localhost:6380", "ttl": "90s"},
		"postgres": {"dsn": "postgres://u:p@localhost/db"},
		"sources": {"ws_urls": ["ws://feed:9000/ticks"]}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.HTTPPort)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Postgres.DSN)
	assert.Equal(t, []string{"ws://feed:9000/ticks"}, cfg.Sources.WSURLs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Second, ParseDuration("90s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("bogus", time.Minute))
}
