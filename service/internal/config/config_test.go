// internal/config/config_test.go
package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jason-s-yu/seega/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, engine.DefaultRules(), cfg.Rules)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"SEEGA_ADDR":                  ":9000",
		"MOM_BACKEND":                 "Redis",
		"REDIS_ADDR":                  "cache:6379",
		"REDIS_DB":                    "3",
		"SEEGA_BOARD_SIZE":            "7",
		"SEEGA_HAND_SIZE":             "24",
		"SEEGA_CAPTURE_POLICY":        "run",
		"SEEGA_EXTRA_MOVE_ON_CAPTURE": "false",
		"SEEGA_LOSS_THRESHOLD":        "2",
		"SEEGA_CENTRAL_BLOCKADE":      "true",
		"SEEGA_ALLOWED_ORIGINS":       "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, BackendRedis, cfg.Backend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, engine.Rules{
		BoardSize:          7,
		HandSize:           24,
		Capture:            engine.CaptureRun,
		ExtraMoveOnCapture: false,
		LossThreshold:      2,
		CentralBlockade:    true,
	}, cfg.Rules)
}

func TestInvalidValuesAreReportedTogether(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{
		"REDIS_DB":               "zero",
		"SEEGA_BOARD_SIZE":       "big",
		"SEEGA_CENTRAL_BLOCKADE": "sometimes",
	}))
	require.Error(t, err)
	for _, key := range []string{"REDIS_DB", "SEEGA_BOARD_SIZE", "SEEGA_CENTRAL_BLOCKADE"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestRulesAreValidated(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{"SEEGA_BOARD_SIZE": "4"}))
	assert.ErrorContains(t, err, "game rules")

	_, err = FromEnv(envOf(map[string]string{"SEEGA_CAPTURE_POLICY": "diagonal"}))
	assert.ErrorContains(t, err, "SEEGA_CAPTURE_POLICY")

	_, err = FromEnv(envOf(map[string]string{"MOM_BACKEND": "rabbitmq"}))
	assert.ErrorContains(t, err, "MOM_BACKEND")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{LogLevel: "debug", LogFormat: "json"}, &buf)
	require.NoError(t, err)
	logger.WithField("match", "m1").Debug("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "m1", line["match"])

	_, err = NewLogger(Config{LogLevel: "loud"}, &buf)
	assert.Error(t, err)
	_, err = NewLogger(Config{LogLevel: "info", LogFormat: "xml"}, &buf)
	assert.Error(t, err)
}
