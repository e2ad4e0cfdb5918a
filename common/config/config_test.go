package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "token")
	t.Setenv("S3_HOST", "minio:9000")
	t.Setenv("S3_ACCESS_KEY", "access")
	t.Setenv("S3_SECRET_KEY", "secret")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("TTS_URL", "http://tts:5000/synthesize")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("line-relay")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Service.Port)
	assert.Equal(t, "/", cfg.Service.BasePath)
	assert.Equal(t, time.Duration(0), cfg.Service.WriteTimeout)
	assert.Equal(t, "https://api.line.me", cfg.Line.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "", cfg.Storage.PublicURL)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Features.EnableDiagnostics)
}

func TestLoad_MissingTokenIsConfigurationError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LINE_CHANNEL_ACCESS_TOKEN", "")

	_, err := Load("line-relay")

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "LINE_CHANNEL_ACCESS_TOKEN", cfgErr.Key)
}

func TestLoad_PublicURLMustBeHTTPS(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_PUBLIC_URL", "http://cdn.example.com")

	_, err := Load("line-relay")

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "S3_PUBLIC_URL", cfgErr.Key)
}

func TestLoad_PublicURLTrailingSlashTrimmed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("S3_PUBLIC_URL", "https://cdn.example.com/")

	cfg, err := Load("line-relay")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicURL)
}

func TestLoad_ReadsDotenvFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "relay.env")
	require.NoError(t, os.WriteFile(path, []byte("CONTEXT_PATH=relay\n"), 0o600))
	t.Setenv("DOTENV", path)
	// t.Setenv restores the variable afterwards; unset it so the file applies
	t.Setenv("CONTEXT_PATH", "unused")
	require.NoError(t, os.Unsetenv("CONTEXT_PATH"))

	cfg, err := Load("line-relay")
	require.NoError(t, err)
	assert.Equal(t, "/relay/", cfg.Service.BasePath)
}

func TestLoad_MalformedDotenvIsConfigurationError(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "broken.env")
	require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600))
	t.Setenv("DOTENV", path)

	_, err := Load("line-relay")

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "DOTENV", cfgErr.Key)
	assert.Contains(t, cfgErr.Reason, path)
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":          "/",
		"/":         "/",
		"api":       "/api/",
		"/api":      "/api/",
		"/api/":     "/api/",
		" /a/b/ ":   "/a/b/",
		"//relay//": "/relay/",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeBasePath(in), "input %q", in)
	}
}
