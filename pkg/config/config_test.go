package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
service:
  name: store-test
  port: 9001
  page_size: 10
database:
  driver: sqlite
  dsn: ":memory:"
jwt:
  secret: from-file
redis:
  cache_ttl: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "store-test", cfg.Service.Name)
	assert.Equal(t, 9001, cfg.Service.Port)
	assert.Equal(t, 10, cfg.Service.PageSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "from-file", cfg.Jwt.Secret)
	assert.Equal(t, 30*time.Second, cfg.Redis.CacheTTL)
	// untouched keys keep their defaults
	assert.Equal(t, "/media/", cfg.Service.MediaURL)
	assert.Equal(t, "grocery.events", cfg.RabbitMQ.Exchange)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVICE_PORT", "8100")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Jwt.Secret)
	assert.Equal(t, 8100, cfg.Service.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Service.PageSize)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
}
