package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	applyEnv(&c, mapLookup(map[string]string{
		"HTTP_ADDRESS":           ":9999",
		"STORE_DRIVER":           "memory",
		"SESSION_VALIDITY":       "10m",
		"CACHE_REFRESH_INTERVAL": "30s",
		"BCRYPT_COST":            "11",
		"ARCHIVE_ENABLED":        "true",
		"S3_BUCKET":              "",
	}))

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "memory", c.StoreDriver)
	assert.Equal(t, 10*time.Minute, c.SessionValidityDuration)
	assert.Equal(t, 30*time.Second, c.CacheRefreshInterval)
	assert.Equal(t, 11, c.BcryptCost)
	assert.True(t, c.ArchiveEnabled)
	assert.Equal(t, "taskkeeper", c.S3Bucket, "empty values keep the previous setting")
}

func TestApplyEnv_BadValuesPanic(t *testing.T) {
	for _, kv := range [][2]string{
		{"SESSION_VALIDITY", "forever"},
		{"BCRYPT_COST", "ten"},
		{"ARCHIVE_ENABLED", "maybe"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			var c Config
			require.Panics(t, func() { applyEnv(&c, mapLookup(map[string]string{kv[0]: kv[1]})) })
		})
	}
}

func TestParseEnv_DotenvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TASKKEEPER_TEST_UNUSED=1\nS3_REGION=eu-north-1\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")

	os.Args = []string{"testbin", "-env", path}

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "eu-north-1", c.S3Region)
	assert.Equal(t, "warn", c.LogLevel, "process environment wins over the file")
}

func TestParseEnv_MissingExplicitFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "absent.env")}

	var c Config
	require.Panics(t, func() { parseEnv(&c) })
}
