package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":5000", c.EndpointAddr)
	assert.Equal(t, 24*time.Hour, c.TokenValidityDuration)
	assert.NotEmpty(t, c.DatabaseDSN)
	assert.NotEmpty(t, c.SecretKey)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, ":5000", cfg.EndpointAddr)
}
