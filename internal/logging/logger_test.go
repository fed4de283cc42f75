package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/photobook/gateway-api/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSONCarriesDefaultFields(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	cfg.Server.Environment = "test"

	var buf bytes.Buffer
	logger := NewWithOutput(cfg, &buf)
	WithSession(logger, "sid-1", "user").Info("restored")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "restored", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "photobook-gateway", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "sid-1", entry["session_id"])
	assert.Equal(t, "user", entry["role"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithOutput_InvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "loud"
	cfg.Log.Format = "text"

	logger := NewWithOutput(cfg, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
