package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Game holds the per-session gameplay settings.
type Game struct {
	PlayerName            string  `yaml:"player_name"`
	StartingCash          float64 `yaml:"starting_cash"`
	RoundSeconds          int     `yaml:"round_seconds"`
	GameSeconds           int     `yaml:"game_seconds"`
	ReactionWindowSeconds int     `yaml:"reaction_window_seconds"`
	DedupWindowSeconds    int     `yaml:"dedup_window_seconds"`
	EventCapacity         int     `yaml:"event_capacity"`
	TradeCapacity         int     `yaml:"trade_capacity"`
}

// Routine tunes the routine event scheduler.
type Routine struct {
	MinDelaySeconds     float64 `yaml:"min_delay_seconds"`
	MaxDelaySeconds     float64 `yaml:"max_delay_seconds"`
	ProbPerTick         float64 `yaml:"prob_per_tick"`
	QuietCeilingSeconds float64 `yaml:"quiet_ceiling_seconds"`
	Immediate           bool    `yaml:"immediate"`
}

// BlackSwan tunes the rare-event scheduler.
type BlackSwan struct {
	MeanIntervalSeconds float64 `yaml:"mean_interval_seconds"`
	MinIntervalSeconds  float64 `yaml:"min_interval_seconds"`
	MaxIntervalSeconds  float64 `yaml:"max_interval_seconds"`
	ForceInRound        int     `yaml:"force_in_round"` // 0 disables
}

// Source selects where events are generated.
type Source struct {
	Mode               string `yaml:"mode"` // local | http
	BaseURL            string `yaml:"base_url"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// Persist configures the embedded result store.
type Persist struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Track configures the background P&L sampler.
type Track struct {
	Enabled    bool   `yaml:"enabled"`
	Spec       string `yaml:"spec"` // cron spec with seconds field
	HistoryCap int    `yaml:"history_cap"`
}

type Root struct {
	Profile     string    `yaml:"profile"` // production | paced | test
	MetricsAddr string    `yaml:"metrics_addr"`
	Game        Game      `yaml:"game"`
	Routine     Routine   `yaml:"routine"`
	BlackSwan   BlackSwan `yaml:"blackswan"`
	Source      Source    `yaml:"source"`
	Persist     Persist   `yaml:"persist"`
	Track       Track     `yaml:"track"`
}

// Load reads a YAML config, applies the named pacing profile for any
// scheduler field left at zero, then fills remaining defaults. A missing
// path yields the pure profile defaults.
func Load(path string) (Root, error) {
	return LoadWithProfile(path, "")
}

// LoadWithProfile is Load with the profile forced, e.g. from a CLI flag.
// Explicit YAML scheduler values still win over the profile.
func LoadWithProfile(path, profile string) (Root, error) {
	var c Root
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, err
		}
	}
	if profile != "" {
		c.Profile = profile
	}
	if err := c.applyProfile(); err != nil {
		return c, err
	}
	c.applyDefaults()
	return c, nil
}

// Default returns the config for a profile with no file on disk.
func Default(profile string) (Root, error) {
	c := Root{Profile: profile}
	if err := c.applyProfile(); err != nil {
		return c, err
	}
	c.applyDefaults()
	return c, nil
}

// applyProfile fills scheduler pacing from the named profile, touching only
// zero fields so explicit YAML values win.
func (c *Root) applyProfile() error {
	if c.Profile == "" {
		c.Profile = "production"
	}

	var r Routine
	var bs BlackSwan
	switch c.Profile {
	case "production":
		r = Routine{MinDelaySeconds: 2, MaxDelaySeconds: 4, ProbPerTick: 1.0, QuietCeilingSeconds: 15, Immediate: true}
		bs = BlackSwan{MeanIntervalSeconds: 120, MinIntervalSeconds: 45, MaxIntervalSeconds: 180}
	case "paced":
		r = Routine{MinDelaySeconds: 5, MaxDelaySeconds: 9, ProbPerTick: 0.7, QuietCeilingSeconds: 15, Immediate: true}
		bs = BlackSwan{MeanIntervalSeconds: 120, MinIntervalSeconds: 45, MaxIntervalSeconds: 180}
	case "test":
		r = Routine{MinDelaySeconds: 2, MaxDelaySeconds: 4, ProbPerTick: 1.0, QuietCeilingSeconds: 15, Immediate: true}
		bs = BlackSwan{MeanIntervalSeconds: 15, MinIntervalSeconds: 5, MaxIntervalSeconds: 30, ForceInRound: 2}
	default:
		return fmt.Errorf("unknown profile %q", c.Profile)
	}

	if c.Routine.MinDelaySeconds == 0 {
		c.Routine.MinDelaySeconds = r.MinDelaySeconds
	}
	if c.Routine.MaxDelaySeconds == 0 {
		c.Routine.MaxDelaySeconds = r.MaxDelaySeconds
	}
	if c.Routine.ProbPerTick == 0 {
		c.Routine.ProbPerTick = r.ProbPerTick
	}
	if c.Routine.QuietCeilingSeconds == 0 {
		c.Routine.QuietCeilingSeconds = r.QuietCeilingSeconds
	}
	if !c.Routine.Immediate {
		c.Routine.Immediate = r.Immediate
	}
	if c.BlackSwan.MeanIntervalSeconds == 0 {
		c.BlackSwan.MeanIntervalSeconds = bs.MeanIntervalSeconds
	}
	if c.BlackSwan.MinIntervalSeconds == 0 {
		c.BlackSwan.MinIntervalSeconds = bs.MinIntervalSeconds
	}
	if c.BlackSwan.MaxIntervalSeconds == 0 {
		c.BlackSwan.MaxIntervalSeconds = bs.MaxIntervalSeconds
	}
	if c.BlackSwan.ForceInRound == 0 {
		c.BlackSwan.ForceInRound = bs.ForceInRound
	}
	return nil
}

func (c *Root) applyDefaults() {
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9109"
	}
	if c.Game.PlayerName == "" {
		c.Game.PlayerName = "Player1"
	}
	if c.Game.StartingCash == 0 {
		c.Game.StartingCash = 10000
	}
	if c.Game.RoundSeconds == 0 {
		c.Game.RoundSeconds = 30
	}
	if c.Game.GameSeconds == 0 {
		c.Game.GameSeconds = 300
	}
	if c.Game.ReactionWindowSeconds == 0 {
		c.Game.ReactionWindowSeconds = 10
	}
	if c.Game.DedupWindowSeconds == 0 {
		c.Game.DedupWindowSeconds = 20
	}
	if c.Game.EventCapacity == 0 {
		c.Game.EventCapacity = 100
	}
	if c.Game.TradeCapacity == 0 {
		c.Game.TradeCapacity = 10
	}
	if c.Source.Mode == "" {
		c.Source.Mode = "local"
	}
	if c.Source.TimeoutSeconds == 0 {
		c.Source.TimeoutSeconds = 3
	}
	if c.Source.RateLimitPerMinute == 0 {
		c.Source.RateLimitPerMinute = 60
	}
	if c.Persist.Path == "" {
		c.Persist.Path = "data/hedgesim.db"
	}
	if c.Track.Spec == "" {
		c.Track.Spec = "*/5 * * * * *"
	}
	if c.Track.HistoryCap == 0 {
		c.Track.HistoryCap = 100
	}
}
