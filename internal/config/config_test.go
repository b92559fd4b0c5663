package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100, cfg.Library.PageSize)
	assert.Equal(t, 20, cfg.Library.RecentLimit)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Logging.File)
}

func TestIsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.IsConfigured())

	cfg.Server.URL = "http://server:8096"
	assert.False(t, cfg.IsConfigured(), "a URL without a token is not a working setup")

	cfg.Server.Token = "tok"
	assert.True(t, cfg.IsConfigured())
}
