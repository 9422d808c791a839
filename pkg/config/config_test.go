package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://example.test/")
	t.Setenv("REMOTE_TIMEOUT", "15")
	t.Setenv("NEARBASKET_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", cfg.BackendURL)
	assert.Equal(t, 15*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, RemoteDriverREST, cfg.RemoteDriver)
	assert.Equal(t, "+91", cfg.DefaultCountryCode)
	assert.Equal(t, 10.0, cfg.NearbyRadiusKm)
	assert.Equal(t, time.Minute, cfg.OTPCooldown)
}

func TestLoadFileOverlaysPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nearbasket.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote_driver: postgres\ndatabase_url: postgres://localhost/nb\nrefresh_interval: 2m\n"), 0o600))

	t.Setenv("BACKEND_URL", "https://example.test")
	t.Setenv("NEARBASKET_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, RemoteDriverPostgres, cfg.RemoteDriver)
	assert.Equal(t, "postgres://localhost/nb", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "https://example.test", cfg.BackendURL)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		RemoteDriver:       "carrier-pigeon",
		StorageDriver:      StorageDriverREST,
		BackendURL:         "https://example.test",
		RemoteTimeout:      time.Second,
		RefreshInterval:    time.Minute,
		NearbyRadiusKm:     5,
		DefaultCountryCode: "+91",
	}
	assert.Error(t, cfg.Validate())

	cfg.RemoteDriver = RemoteDriverREST
	assert.NoError(t, cfg.Validate())

	cfg.NearbyRadiusKm = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresBackendURLForEveryDriver(t *testing.T) {
	cfg := &Config{
		RemoteDriver:       RemoteDriverFirestore,
		FirebaseProject:    "nearbasket-dev",
		StorageDriver:      StorageDriverGCS,
		RemoteTimeout:      time.Second,
		RefreshInterval:    time.Minute,
		NearbyRadiusKm:     5,
		DefaultCountryCode: "+91",
	}
	assert.Error(t, cfg.Validate())

	cfg.BackendURL = "https://example.test"
	assert.NoError(t, cfg.Validate())
}
