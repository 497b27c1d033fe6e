package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 2, cfg.Database.ReadRetries)
	assert.Equal(t, "Asia/Manila", cfg.Schedule.Timezone)
	assert.Equal(t, 15*time.Second, cfg.Schedule.LockTTL)
	assert.False(t, cfg.Schedule.CacheEnabled)
	assert.Equal(t, 180, cfg.Retention.OverrideDays)
	assert.Equal(t, "@daily", cfg.Retention.CronSpec)
	assert.Nil(t, cfg.Schedule.Departments)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SCHEDULE_DEPARTMENTS", " News, Music ,,")
	t.Setenv("SCHEDULE_CACHE_TTL", "45s")
	t.Setenv("SCHEDULE_LOCK_TTL", "not-a-duration")
	t.Setenv("SUBMISSION_RATE_LIMIT", "0.5")
	t.Setenv("ENABLE_EVENTS", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.station.fm")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"News", "Music"}, cfg.Schedule.Departments)
	assert.Equal(t, 45*time.Second, cfg.Schedule.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.Schedule.LockTTL)
	assert.Equal(t, 0.5, cfg.Submissions.RateLimit)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"https://admin.station.fm"}, cfg.CORS.AllowedOrigins)
}
