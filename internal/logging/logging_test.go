package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dymm/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	Configure(log, config.LogConfig{Level: "debug"}, &buf)

	log.WithField("avatar_id", 7).Debug("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "debug", line["level"])
	assert.EqualValues(t, 7, line["avatar_id"])
}

func TestConfigureBadLevelFallsBackToInfo(t *testing.T) {
	log := logrus.New()
	Configure(log, config.LogConfig{Level: "chatty"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestConfigureAlsoWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log := logrus.New()
	Configure(log, config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &bytes.Buffer{})

	log.Info("to file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}
