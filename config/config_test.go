package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":28416", cfg.Addr)
	assert.Equal(t, 10, cfg.Tolerance)
	assert.Equal(t, DriverMemory, cfg.Driver)
	assert.Equal(t, 5*time.Minute, cfg.ChallengeTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captcha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
tolerance: 6
store: sqlite
sqlite_path: /tmp/captcha.db
challenge_ttl: 2m
log_level: debug
`), 0o644))
	t.Setenv(FileEnv, path)
	t.Setenv("CAPTCHA_TOLERANCE", "4")
	t.Setenv("CAPTCHA_IMAGE_URL", "https://picsum.photos/300/200")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 4, cfg.Tolerance, "environment wins over the file")
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "/tmp/captcha.db", cfg.SQLitePath)
	assert.Equal(t, 2*time.Minute, cfg.ChallengeTTL)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "https://picsum.photos/300/200", cfg.ImageURL)
	assert.Equal(t, "./images", cfg.FallbackPath, "unset keys keep their defaults")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Driver = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Tolerance = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Driver = DriverSQLite
	cfg.SQLitePath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
