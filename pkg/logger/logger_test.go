package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with service attr", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithEnvironment("production", "outreach"),
		)
		log.Info("queue drained", logger.Component("dispatch"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "queue drained", record["msg"])
		assert.Equal(t, "outreach", record["service"])
		assert.Equal(t, "dispatch", record["component"])
	})

	t.Run("development is text at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithEnvironment("development", "outreach"),
		)
		log.Debug("claiming item")

		assert.Contains(t, buf.String(), "claiming item")
		assert.NotContains(t, buf.String(), "{", "text format in development")
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		log.Info("ignored")
		assert.Empty(t, buf.String())
	})
}

func TestErrorAttr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "boom", logger.Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", logger.Error(nil).Value.String())
}
