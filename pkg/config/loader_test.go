package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/config"
)

type senderConfig struct {
	FromAddress string `env:"TEST_FROM_ADDRESS"`
	BatchSize   int    `env:"TEST_BATCH_SIZE" envDefault:"25"`
	BccSelf     bool   `env:"TEST_BCC_SELF" envDefault:"true"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN_THAT_IS_NEVER_SET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("reads values and defaults", func(t *testing.T) {
		t.Setenv("TEST_FROM_ADDRESS", "athlete@example.com")

		var cfg senderConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "athlete@example.com", cfg.FromAddress)
		assert.Equal(t, 25, cfg.BatchSize)
		assert.True(t, cfg.BccSelf)
	})

	t.Run("caches per type", func(t *testing.T) {
		t.Setenv("TEST_FROM_ADDRESS", "changed@example.com")

		// senderConfig was parsed above; the cached copy wins.
		var cfg senderConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "athlete@example.com", cfg.FromAddress)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[senderConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
