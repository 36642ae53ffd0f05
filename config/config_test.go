package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "vacations.db", cfg.Database.Path)
	assert.Equal(t, "ON", cfg.Defaults.Province)
	assert.Equal(t, float64(20), cfg.Defaults.Allowance)
	assert.Equal(t, "CA", cfg.Holidays.Country)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
database:
  path: /tmp/test.db
defaults:
  province: QC
  allowance: 25
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "QC", cfg.Defaults.Province)
	assert.Equal(t, float64(25), cfg.Defaults.Allowance)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad port", "server:\n  port: -1\n"},
		{"bad log level", "log:\n  level: verbose\n"},
		{"negative allowance", "defaults:\n  allowance: -3\n"},
		{"empty country", "holidays:\n  country: \"\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
