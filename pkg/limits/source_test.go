package limits_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athletereach/outreach/pkg/limits"
)

func TestParsePlans(t *testing.T) {
	t.Parallel()

	t.Run("valid plan file", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
free:
  name: Free
  description: Starter tier
  public: true
  limits:
    schools_sent: 20
    templates: 3
    ai_calls: 5
pro:
  name: Pro
  public: true
  limits:
    schools_sent: -1
    templates: -1
    ai_calls: 200
`)

		plans, err := limits.ParsePlans(data)
		require.NoError(t, err)
		require.Len(t, plans, 2)

		free := plans["free"]
		assert.Equal(t, "free", free.ID)
		assert.Equal(t, "Free", free.Name)
		assert.True(t, free.Public)
		assert.Equal(t, int64(20), free.Limits[limits.ResourceSchoolsSent])

		pro := plans["pro"]
		assert.Equal(t, limits.Unlimited, pro.Limits[limits.ResourceSchoolsSent])
		assert.Equal(t, int64(200), pro.Limits[limits.ResourceAICalls])
	})

	t.Run("rejects limits below -1", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
broken:
  name: Broken
  limits:
    schools_sent: -5
`)

		_, err := limits.ParsePlans(data)
		assert.ErrorIs(t, err, limits.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := limits.ParsePlans([]byte("{ not yaml"))
		assert.ErrorIs(t, err, limits.ErrFailedToLoadPlans)
	})
}

func TestInMemSource_Isolation(t *testing.T) {
	t.Parallel()

	original := map[string]limits.Plan{
		"free": {ID: "free", Limits: map[limits.Resource]int64{limits.ResourceTemplates: 3}},
	}
	src := limits.NewInMemSource(original)

	// Mutating the caller's map must not affect the source.
	original["free"].Limits[limits.ResourceTemplates] = 99

	plans, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), plans["free"].Limits[limits.ResourceTemplates])

	// Mutating a loaded copy must not affect subsequent loads.
	plans["free"].Limits[limits.ResourceTemplates] = 42
	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), again["free"].Limits[limits.ResourceTemplates])
}
