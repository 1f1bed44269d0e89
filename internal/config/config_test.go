package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/internal/config"
	"go.opentelemetry.io/otel/attribute"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.ChronopostEnabled)
	assert.False(t, cfg.DPDUseMock)
	assert.Equal(t, 30*time.Second, cfg.GLSTimeout)
	assert.Equal(t, "carrierkit", cfg.ServiceName)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DPD_USE_MOCK", "true")
	t.Setenv("GLS_ENABLED", "false")
	t.Setenv("CHRONOPOST_TIMEOUT", "5s")
	t.Setenv("CHRONOPOST_URL", "http://localhost:9000/chronopost")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.DPDUseMock)
	assert.False(t, cfg.GLSEnabled)
	assert.Equal(t, 5*time.Second, cfg.ChronopostTimeout)
	assert.Equal(t, "http://localhost:9000/chronopost", cfg.ChronopostURL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PORT", "eighty")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestAttributes(t *testing.T) {
	t.Setenv("GLS_ENABLED", "false")
	cfg, err := config.Load()
	require.NoError(t, err)

	attrs := cfg.Attributes()
	assert.Contains(t, attrs, attribute.Bool("gls.enabled", false))
	assert.Contains(t, attrs, attribute.String("service.name", "carrierkit"))
}
