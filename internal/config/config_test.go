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

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("source", "flag-default.csv", "")
	fs.String("region", "", "")
	fs.Duration("http-timeout", 0, "")
	fs.String("log-level", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", testFlags(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Global", cfg.Region)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vgsales.yaml")
	data := "addr: 0.0.0.0:9090\nregion: Europe\nhttp_timeout: 5s\nlog:\n  format: json\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("VGSALES_REGION", "Japan")
	t.Setenv("VGSALES_LOG_LEVEL", "warn")

	cfg, err := Load(path, testFlags(t, "--source", "games.csv", "--log-level", "error"))
	require.NoError(t, err)

	assert.Equal(t, "games.csv", cfg.Source, "flag beats default")
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr, "file beats default")
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Japan", cfg.Region, "env beats file")
	assert.Equal(t, "error", cfg.Log.Level, "flag beats env")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	cfg.Source = ""
	cfg.Addr = "not an address"
	cfg.HTTPTimeout = 0
	cfg.Region = "Mars"
	cfg.Log.Level = "loud"

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"source:", "addr:", "http_timeout:", "region:", "log.level:"} {
		assert.Contains(t, err.Error(), want)
	}
}
