package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("EVENTS_API_KEY", "secret")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("EVENTS_API_URL", "")
	t.Setenv("DEFAULT_PREFECTURE", "")
	t.Setenv("EVENTS_API_TIMEOUT", "")
	t.Setenv("SESSION_IDLE_TIMEOUT", "")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "tokyo", cfg.DefaultRegion)
	assert.Equal(t, 10*time.Second, cfg.EventsAPITimeout)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_RequiresAPIKey(t *testing.T) {
	t.Setenv("EVENTS_API_KEY", "")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "EVENTS_API_KEY")
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	t.Setenv("EVENTS_API_KEY", "secret")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("EVENTS_API_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("EVENTS_API_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "chatty")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadRules_Embedded(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, 10, r.MinCapacity)
	assert.Equal(t, 92, r.MaxDateSpanDays)
	assert.Equal(t, r, DefaultRules())
	assert.Contains(t, r.VenueDenylist, "オンライン")
	assert.True(t, r.KnownRegion("tokyo"))
	assert.False(t, r.KnownRegion("atlantis"))
}

func TestLoadRules_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_capacity: 5\nregions: [osaka]\n"), 0o600))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 5, r.MinCapacity)
	assert.Equal(t, DefaultMaxDateSpanDays, r.MaxDateSpanDays, "unset span falls back to the default")
	assert.Equal(t, []string{"osaka"}, r.Regions)

	_, err = ParseRules([]byte("regions: []\n"))
	assert.Error(t, err)

	_, err = ParseRules([]byte("max_date_span_days: 5000\nregions: [osaka]\n"))
	assert.Error(t, err)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
