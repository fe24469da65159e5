// hedgesim runs a headless market-event trading game: scheduled news and
// black swans hit a starting portfolio, rounds settle every thirty seconds,
// and results land in the embedded store.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/coach"
	"github.com/hedgelabs/hedge-sim/internal/config"
	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/game"
	"github.com/hedgelabs/hedge-sim/internal/observ"
	"github.com/hedgelabs/hedge-sim/internal/persist"
	"github.com/hedgelabs/hedge-sim/internal/sched"
	"github.com/hedgelabs/hedge-sim/internal/track"
)

// intermission is how long the simulator idles between rounds before
// auto-resuming.
const intermission = 3 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config (empty = profile defaults)")
	profile := flag.String("profile", "", "pacing profile: production | paced | test")
	duration := flag.Int("duration", 0, "game length in seconds (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "metrics listen address (overrides config)")
	flag.Parse()

	cfg, err := config.LoadWithProfile(*configPath, *profile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *duration > 0 {
		cfg.Game.GameSeconds = *duration
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	source := buildSource(cfg.Source)
	store := buildStore(cfg.Persist)
	defer store.Close()

	session := game.NewSession(game.Config{
		PlayerName:     cfg.Game.PlayerName,
		StartingCash:   cfg.Game.StartingCash,
		RoundSeconds:   cfg.Game.RoundSeconds,
		GameSeconds:    cfg.Game.GameSeconds,
		ReactionWindow: time.Duration(cfg.Game.ReactionWindowSeconds) * time.Second,
		DedupWindow:    time.Duration(cfg.Game.DedupWindowSeconds) * time.Second,
		EventCapacity:  cfg.Game.EventCapacity,
		TradeCapacity:  cfg.Game.TradeCapacity,
		Routine: sched.RoutineConfig{
			MinDelay:     secs(cfg.Routine.MinDelaySeconds),
			MaxDelay:     secs(cfg.Routine.MaxDelaySeconds),
			ProbPerTick:  cfg.Routine.ProbPerTick,
			QuietCeiling: secs(cfg.Routine.QuietCeilingSeconds),
			Immediate:    cfg.Routine.Immediate,
		},
		BlackSwan: sched.BlackSwanConfig{
			MeanInterval: secs(cfg.BlackSwan.MeanIntervalSeconds),
			MinInterval:  secs(cfg.BlackSwan.MinIntervalSeconds),
			MaxInterval:  secs(cfg.BlackSwan.MaxIntervalSeconds),
		},
		ForceBlackSwanRound: cfg.BlackSwan.ForceInRound,
	}, source, store)

	tracker, err := track.New(cfg.Track.Spec, cfg.Track.HistoryCap, func() (track.Sample, bool) {
		snap := session.Snapshot()
		if snap.State == game.StateIdle || snap.State == game.StateGameOver {
			return track.Sample{}, false
		}
		return track.Sample{
			Value: snap.PortfolioValue,
			Cash:  snap.Cash,
			PnL:   snap.TotalPnL,
		}, true
	})
	if err != nil {
		log.Fatalf("tracker: %v", err)
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observ.Handler())
		observ.Log("metrics_listening", map[string]any{"addr": cfg.MetricsAddr})
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			observ.Log("metrics_server_error", map[string]any{"error": err.Error()})
		}
	}()

	session.Start()
	if cfg.Track.Enabled {
		tracker.Start()
		defer tracker.Stop()
	}

	run(session, coach.RuleCoach{})
}

// run drives the session clock until game over or SIGINT.
func run(session *game.Session, adviser coach.Coach) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	var resumeAt time.Time
	for {
		select {
		case <-sigc:
			observ.Log("shutdown", map[string]any{"reason": "signal"})
			session.Shutdown()
			return

		case now := <-tick.C:
			snap := session.Snapshot()
			switch snap.State {
			case game.StateActive:
				session.Tick()

			case game.StateRoundOver:
				if resumeAt.IsZero() {
					resumeAt = now.Add(intermission)
					if advice := adviser.Advise(coach.Summarize(snap.Portfolio), session.Reactions()); advice != "" {
						observ.Log("coach_advice", map[string]any{"round": snap.RoundNumber, "advice": advice})
					}
				} else if now.After(resumeAt) {
					resumeAt = time.Time{}
					session.Resume()
				}

			case game.StateGameOver:
				entry := session.LeaderboardEntry()
				observ.Log("final_result", map[string]any{
					"player": entry.PlayerName,
					"score":  entry.Score,
					"title":  entry.Title,
					"value":  entry.PortfolioValue,
					"rounds": entry.RoundsCompleted,
				})
				session.Shutdown()
				return
			}
		}
	}
}

// buildSource wires the configured event source; remote sources always fall
// back to the in-process generator so a dead endpoint never stalls play.
func buildSource(cfg config.Source) adapters.Source {
	local := adapters.NewLocalSource(event.NewGenerator())
	if cfg.Mode != "http" {
		return adapters.NewFallbackSource(nil, local)
	}
	remote, err := adapters.NewHTTPSource(adapters.HTTPSourceConfig{
		BaseURL:            cfg.BaseURL,
		TimeoutSeconds:     cfg.TimeoutSeconds,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err != nil {
		observ.Log("event_source_config_error", map[string]any{"error": err.Error()})
		return adapters.NewFallbackSource(nil, local)
	}
	return adapters.NewFallbackSource(remote, local)
}

// buildStore opens the embedded store, degrading to no persistence when the
// database cannot be opened.
func buildStore(cfg config.Persist) persist.Store {
	if !cfg.Enabled {
		return persist.Noop{}
	}
	store, err := persist.NewSQLiteStore(cfg.Path)
	if err != nil {
		observ.Log("persist_open_error", map[string]any{"path": cfg.Path, "error": err.Error()})
		return persist.Noop{}
	}
	observ.Log("persist_open", map[string]any{"path": cfg.Path})
	return store
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
