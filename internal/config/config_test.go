package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfiles(t *testing.T) {
	c, err := Default("")
	require.NoError(t, err)
	assert.Equal(t, "production", c.Profile)
	assert.Equal(t, 2.0, c.Routine.MinDelaySeconds)
	assert.Equal(t, 1.0, c.Routine.ProbPerTick)
	assert.Equal(t, 120.0, c.BlackSwan.MeanIntervalSeconds)
	assert.Zero(t, c.BlackSwan.ForceInRound)
	assert.Equal(t, 10000.0, c.Game.StartingCash)
	assert.Equal(t, 30, c.Game.RoundSeconds)
	assert.Equal(t, "local", c.Source.Mode)

	paced, err := Default("paced")
	require.NoError(t, err)
	assert.Equal(t, 5.0, paced.Routine.MinDelaySeconds)
	assert.Equal(t, 0.7, paced.Routine.ProbPerTick)

	test, err := Default("test")
	require.NoError(t, err)
	assert.Equal(t, 15.0, test.BlackSwan.MeanIntervalSeconds)
	assert.Equal(t, 5.0, test.BlackSwan.MinIntervalSeconds)
	assert.Equal(t, 2, test.BlackSwan.ForceInRound)
}

func TestDefaultUnknownProfile(t *testing.T) {
	_, err := Default("ludicrous")
	assert.Error(t, err)
}

func TestLoadOverridesProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
profile: paced
game:
  player_name: alice
  game_seconds: 900
routine:
  min_delay_seconds: 1
source:
  mode: http
  base_url: http://127.0.0.1:8091
persist:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Game.PlayerName)
	assert.Equal(t, 900, c.Game.GameSeconds)
	assert.Equal(t, 1.0, c.Routine.MinDelaySeconds, "explicit value beats profile")
	assert.Equal(t, 9.0, c.Routine.MaxDelaySeconds, "profile fills the rest")
	assert.Equal(t, "http", c.Source.Mode)
	assert.Equal(t, 60, c.Source.RateLimitPerMinute)
	assert.True(t, c.Persist.Enabled)
	assert.Equal(t, "data/hedgesim.db", c.Persist.Path)
}

func TestLoadWithProfileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
profile: production
game:
  player_name: bob
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := LoadWithProfile(path, "test")
	require.NoError(t, err)
	assert.Equal(t, "test", c.Profile, "flag beats the file's profile")
	assert.Equal(t, "bob", c.Game.PlayerName, "file values survive")
	assert.Equal(t, 2, c.BlackSwan.ForceInRound)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "production", c.Profile)
	assert.Equal(t, "*/5 * * * * *", c.Track.Spec)
	assert.Equal(t, 100, c.Track.HistoryCap)
}
