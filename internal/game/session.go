package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hedgelabs/hedge-sim/internal/adapters"
	"github.com/hedgelabs/hedge-sim/internal/analytics"
	"github.com/hedgelabs/hedge-sim/internal/event"
	"github.com/hedgelabs/hedge-sim/internal/observ"
	"github.com/hedgelabs/hedge-sim/internal/persist"
	"github.com/hedgelabs/hedge-sim/internal/portfolio"
	"github.com/hedgelabs/hedge-sim/internal/sched"
)

// State is the session's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateRoundOver State = "round_over" // awaiting Resume to start the next round
	StateGameOver  State = "game_over"
)

// Round and game durations in seconds.
const (
	RoundDuration      = 30
	GameDurationShort  = 300
	GameDurationMedium = 600
	GameDurationLong   = 900
)

// Config tunes one game session.
type Config struct {
	PlayerName     string
	StartingCash   float64
	Book           []portfolio.Holding
	RoundSeconds   int
	GameSeconds    int
	ReactionWindow time.Duration
	DedupWindow    time.Duration
	EventCapacity  int
	TradeCapacity  int

	Routine   sched.RoutineConfig
	BlackSwan sched.BlackSwanConfig

	// ForceBlackSwanRound fires a guaranteed black swan shortly after the
	// given round starts. 0 disables; the test profile uses round 2.
	ForceBlackSwanRound int
}

func (c *Config) withDefaults() {
	if c.PlayerName == "" {
		c.PlayerName = "Player1"
	}
	if c.StartingCash <= 0 {
		c.StartingCash = 10000
	}
	if c.Book == nil {
		c.Book = portfolio.DefaultBook()
	}
	if c.RoundSeconds <= 0 {
		c.RoundSeconds = RoundDuration
	}
	if c.GameSeconds <= 0 {
		c.GameSeconds = GameDurationShort
	}
	if c.ReactionWindow <= 0 {
		c.ReactionWindow = 10 * time.Second
	}
	if c.Routine == (sched.RoutineConfig{}) {
		c.Routine = sched.RoutineConfig{
			MinDelay:     2 * time.Second,
			MaxDelay:     4 * time.Second,
			ProbPerTick:  1.0,
			QuietCeiling: 15 * time.Second,
			Immediate:    true,
		}
	}
	if c.BlackSwan == (sched.BlackSwanConfig{}) {
		c.BlackSwan = sched.BlackSwanConfig{
			MeanInterval: 120 * time.Second,
			MinInterval:  45 * time.Second,
			MaxInterval:  180 * time.Second,
		}
	}
}

// TradeRequest is a player order before validation.
type TradeRequest struct {
	Action analytics.Action
	Ticker string
	Qty    int
}

// Snapshot is a read-only view of session state.
type Snapshot struct {
	State            State
	RoundNumber      int
	SecondsRemaining int
	TotalRounds      int
	RoundsCompleted  int
	Streak           int
	Score            int
	Title            string
	InitialValue     float64
	PortfolioValue   float64
	Cash             float64
	TotalPnL         float64
	BlackSwanRound   bool
	PendingBlackSwan *event.MarketEvent
	Portfolio        portfolio.Portfolio
}

// Session owns one game: the ledger, the round clock, both schedulers, the
// event log and the decision gate. All mutation goes through its methods;
// there is no module-level game state.
type Session struct {
	mu  sync.Mutex
	cfg Config

	state   State
	ledger  portfolio.Portfolio
	log     *event.Log
	trades  *analytics.History
	records *analytics.RecordLog
	gate    *DecisionGate
	source  adapters.Source
	store   persist.Store

	routine *sched.Routine
	swans   *sched.BlackSwan

	initialValue     float64
	roundNumber      int
	secondsRemaining int
	totalRounds      int
	roundsCompleted  int
	streak           int
	score            int
	title            string
	blackSwanRound   bool
	lastAppliedID    string
	lastEvent        *event.MarketEvent
	roundStartPnL    float64

	forcedSwanFired bool
	forcedSwanTimer *time.Timer

	gameID        int64
	participantID int64
	roundID       int64

	now func() time.Time
}

// NewSession wires a session from its collaborators. The store may be nil
// (persistence disabled); the source must not be.
func NewSession(cfg Config, source adapters.Source, store persist.Store) *Session {
	cfg.withDefaults()
	if store == nil {
		store = persist.Noop{}
	}

	s := &Session{
		cfg:     cfg,
		state:   StateIdle,
		log:     event.NewLog(cfg.DedupWindow, cfg.EventCapacity),
		trades:  analytics.NewHistory(cfg.TradeCapacity),
		records: analytics.NewRecordLog(0),
		gate:    NewDecisionGate(),
		source:  source,
		store:   store,
		title:   TitleForStreak(0),
		now:     time.Now,
	}
	s.routine = sched.NewRoutine(cfg.Routine, source, s.OnEvent, s.routineAllowed)
	s.swans = sched.NewBlackSwan(cfg.BlackSwan, source, s.OnEvent, s.swanAllowed, s.gate.Pending)
	return s
}

// routineAllowed gates routine emission: any started, unfinished game.
// Events emitted while paused are dropped at consumption, not at emission.
func (s *Session) routineAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateActive || s.state == StatePaused || s.state == StateRoundOver
}

// swanAllowed gates black-swan emission: active and not paused.
func (s *Session) swanAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateActive
}

// Start begins a fresh game from Idle or GameOver. Starting an in-progress
// session is a no-op, so a supervising caller may invoke it redundantly.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateGameOver {
		s.mu.Unlock()
		return
	}

	s.ledger = portfolio.New(s.cfg.StartingCash, s.cfg.Book)
	s.initialValue = s.ledger.Value()
	s.roundNumber = 1
	s.secondsRemaining = s.cfg.RoundSeconds
	s.totalRounds = s.cfg.GameSeconds / s.cfg.RoundSeconds
	s.roundsCompleted = 0
	s.streak = 0
	s.score = 0
	s.title = TitleForStreak(0)
	s.blackSwanRound = false
	s.lastAppliedID = ""
	s.lastEvent = nil
	s.roundStartPnL = 0
	s.forcedSwanFired = false
	s.state = StateActive

	s.initPersistenceLocked()
	s.armForcedSwanLocked()
	s.mu.Unlock()

	s.routine.Start()
	s.swans.Start()
	observ.Log("game_started", map[string]any{
		"player":        s.cfg.PlayerName,
		"starting_cash": s.cfg.StartingCash,
		"total_rounds":  s.totalRounds,
	})
}

// initPersistenceLocked resolves game/participant/round ids. Best-effort:
// a failing store leaves the ids at zero and gameplay continues.
func (s *Session) initPersistenceLocked() {
	gameID, err := s.store.CreateOrGetGame(s.cfg.StartingCash)
	if err != nil {
		observ.Log("persist_error", map[string]any{"op": "create_game", "error": err.Error()})
		return
	}
	s.gameID = gameID

	if pid, err := s.store.GetOrCreateParticipant(gameID, s.cfg.PlayerName, s.cfg.StartingCash); err != nil {
		observ.Log("persist_error", map[string]any{"op": "create_participant", "error": err.Error()})
	} else {
		s.participantID = pid
	}
	s.openRoundLocked()

	if err := s.store.CaptureSnapshots(s.ledger.Clone(), s.gameID, s.roundID); err != nil {
		observ.Log("persist_error", map[string]any{"op": "capture_snapshots", "error": err.Error()})
	}
}

func (s *Session) openRoundLocked() {
	if s.gameID == 0 {
		return
	}
	rid, err := s.store.CreateOrGetRound(s.gameID, s.roundNumber)
	if err != nil {
		observ.Log("persist_error", map[string]any{"op": "create_round", "round": s.roundNumber, "error": err.Error()})
		s.roundID = 0
		return
	}
	s.roundID = rid
}

// armForcedSwanLocked schedules the guaranteed black swan used by the test
// profile, two seconds into the configured round.
func (s *Session) armForcedSwanLocked() {
	if s.cfg.ForceBlackSwanRound == 0 || s.forcedSwanFired || s.roundNumber != s.cfg.ForceBlackSwanRound {
		return
	}
	s.forcedSwanFired = true
	s.forcedSwanTimer = time.AfterFunc(2*time.Second, func() {
		ev, err := s.source.Generate(context.Background(), adapters.GenerateRequest{ForceBlackSwan: true})
		if err != nil || ev == nil {
			observ.Log("forced_blackswan_failed", map[string]any{"error": fmt.Sprint(err)})
			return
		}
		s.OnEvent(*ev)
	})
}

// Pause suspends event consumption and the round clock.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	s.state = StatePaused
	observ.Log("game_paused", map[string]any{"round": s.roundNumber})
}

// Resume continues from Paused, or advances to the next round from
// RoundOver. Streak and score carry over; only a fresh Start resets them.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePaused:
		s.state = StateActive
		observ.Log("game_resumed", map[string]any{"round": s.roundNumber})
	case StateRoundOver:
		s.roundNumber++
		s.secondsRemaining = s.cfg.RoundSeconds
		s.blackSwanRound = false
		s.state = StateActive
		s.openRoundLocked()
		s.armForcedSwanLocked()
		observ.Log("round_started", map[string]any{"round": s.roundNumber})
	}
}

// Tick advances the round clock by one second. At zero the round ends
// exactly once. Ticks outside Active are ignored.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.secondsRemaining--
	observ.SetGauge("round_seconds_remaining", float64(s.secondsRemaining), nil)
	if s.secondsRemaining > 0 {
		s.mu.Unlock()
		return
	}

	gameOver := s.endRoundLocked()
	s.mu.Unlock()

	if gameOver {
		// stop outside the session lock: the scheduler loops call back
		// into OnEvent and Stop waits for them to exit
		s.routine.Stop()
		s.swans.Stop()
	}
}

// endRoundLocked settles the finished round and returns true on game over.
func (s *Session) endRoundLocked() bool {
	value := s.ledger.Value()
	survived := Survived(value, s.initialValue)
	if survived {
		s.streak++
	} else {
		s.streak = 0
	}
	s.roundsCompleted = s.roundNumber

	pnlPercent := (value - s.initialValue) / s.initialValue * 100
	s.score = Score(pnlPercent, s.streak, s.blackSwanRound)
	s.title = TitleForStreak(s.streak)

	rec := s.reactionLocked()
	s.records.Add(rec)
	s.persistRoundLocked(rec)

	kv := map[string]any{
		"round":      s.roundNumber,
		"survived":   survived,
		"streak":     s.streak,
		"score":      s.score,
		"value":      value,
		"black_swan": s.blackSwanRound,
	}
	if s.lastEvent != nil {
		kv["reaction"] = analytics.Pattern(*s.lastEvent, s.trades.Trades())
	}
	observ.Log("round_ended", kv)
	observ.SetGauge("portfolio_value", value, nil)
	observ.SetGauge("streak", float64(s.streak), nil)

	if s.roundNumber >= s.totalRounds {
		s.state = StateGameOver
		observ.Log("game_over", map[string]any{
			"score": s.score,
			"title": s.title,
			"value": value,
		})
		return true
	}
	s.state = StateRoundOver
	return false
}

// reactionLocked classifies the player's response to the round's last event.
func (s *Session) reactionLocked() analytics.ReactionRecord {
	if s.lastEvent == nil {
		return analytics.ReactionRecord{}
	}
	return analytics.Analyze(*s.lastEvent, s.trades.Trades(), s.cfg.ReactionWindow)
}

func (s *Session) persistRoundLocked(rec analytics.ReactionRecord) {
	if s.roundID == 0 {
		return
	}
	pnl := s.ledger.TotalPnL()
	delta := portfolio.Round2(pnl - s.roundStartPnL)
	s.roundStartPnL = pnl

	if s.participantID != 0 {
		if err := s.store.SaveRoundScore(s.participantID, s.roundID, delta, rec.Reacted, rec.ReactionLatencyMs); err != nil {
			observ.Log("persist_error", map[string]any{"op": "save_round_score", "error": err.Error()})
		}
	}
	if err := s.store.EndRound(s.roundID); err != nil {
		observ.Log("persist_error", map[string]any{"op": "end_round", "error": err.Error()})
	}
}

// OnEvent is the single entry point for emitted events: scheduler output,
// forced swans and aftershocks all land here. Events are deduplicated by
// the log, applied to the ledger at most once per runtime id, and dropped
// entirely outside Active.
func (s *Session) OnEvent(ev event.MarketEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEventLocked(ev)
}

func (s *Session) onEventLocked(ev event.MarketEvent) {
	if s.state != StateActive {
		return
	}
	if !s.log.Ingest(ev) {
		return
	}
	if ev.Type == event.TypeBlackSwan {
		s.blackSwanRound = true
		s.gate.Trigger(ev)
	}
	s.applyLocked(ev)
}

// applyLocked reprices the ledger for an accepted event, guarded so the
// same logical emission observed twice is applied exactly once.
func (s *Session) applyLocked(ev event.MarketEvent) {
	if s.lastAppliedID == ev.RuntimeID {
		return
	}
	s.lastAppliedID = ev.RuntimeID
	s.ledger = portfolio.ApplyImpact(s.ledger, ev)
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	s.lastEvent = &ev

	observ.IncCounter("events_applied_total", map[string]string{"type": string(ev.Type)})
	observ.SetGauge("portfolio_value", s.ledger.Value(), nil)

	if s.gameID != 0 {
		if err := s.store.CaptureSnapshots(s.ledger.Clone(), s.gameID, s.roundID); err != nil {
			observ.Log("persist_error", map[string]any{"op": "capture_snapshots", "error": err.Error()})
		}
	}
}

// HandleTrade validates and executes a player order. Oversells and
// overspends are rejected with the ledger untouched.
func (s *Session) HandleTrade(req TradeRequest) (analytics.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return analytics.Trade{}, fmt.Errorf("no active round")
	}
	if req.Qty < 1 {
		return analytics.Trade{}, fmt.Errorf("qty must be >= 1, got %d", req.Qty)
	}
	h, ok := s.ledger.Holding(req.Ticker)
	if !ok {
		return analytics.Trade{}, fmt.Errorf("unknown ticker %q", req.Ticker)
	}

	price := h.Price
	switch req.Action {
	case analytics.ActionBuy:
		if err := s.ledger.Buy(req.Ticker, req.Qty, price); err != nil {
			observ.IncCounter("trades_rejected_total", map[string]string{"action": "BUY"})
			return analytics.Trade{}, err
		}
	case analytics.ActionSell:
		if req.Qty > h.Shares {
			observ.IncCounter("trades_rejected_total", map[string]string{"action": "SELL"})
			return analytics.Trade{}, fmt.Errorf("cannot sell %d %s: only %d held", req.Qty, req.Ticker, h.Shares)
		}
		s.ledger.Sell(req.Ticker, req.Qty, price)
	default:
		return analytics.Trade{}, fmt.Errorf("unknown trade action %q", req.Action)
	}

	tr := analytics.Trade{
		Action:    req.Action,
		Ticker:    req.Ticker,
		Qty:       req.Qty,
		Price:     price,
		Timestamp: s.now(),
	}
	if s.lastEvent != nil {
		tr.RelatedEventID = s.lastEvent.RuntimeID
	}
	s.trades.Record(tr)

	observ.IncCounter("trades_executed_total", map[string]string{"action": string(req.Action)})
	observ.SetGauge("cash", s.ledger.Cash, nil)
	return tr, nil
}

// ResolveBlackSwan applies the player's decision for the pending black
// swan. A non-zero aftershock takes the normal ingest and apply path but
// never re-opens the decision gate: resolving is terminal for that swan.
func (s *Session) ResolveBlackSwan(choice Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shock, ok, err := s.gate.Resolve(choice, s.now())
	if err != nil {
		return err
	}
	if ok && s.state == StateActive && s.log.Ingest(shock) {
		s.applyLocked(shock)
	}
	return nil
}

// Shutdown stops both schedulers and the forced-swan timer. Idempotent;
// called on process exit or when abandoning a session mid-game.
func (s *Session) Shutdown() {
	s.mu.Lock()
	if s.forcedSwanTimer != nil {
		s.forcedSwanTimer.Stop()
		s.forcedSwanTimer = nil
	}
	s.mu.Unlock()

	s.routine.Stop()
	s.swans.Stop()
}

// Snapshot returns a consistent read-only view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:            s.state,
		RoundNumber:      s.roundNumber,
		SecondsRemaining: s.secondsRemaining,
		TotalRounds:      s.totalRounds,
		RoundsCompleted:  s.roundsCompleted,
		Streak:           s.streak,
		Score:            s.score,
		Title:            s.title,
		InitialValue:     s.initialValue,
		PortfolioValue:   s.ledger.Value(),
		Cash:             s.ledger.Cash,
		TotalPnL:         s.ledger.TotalPnL(),
		BlackSwanRound:   s.blackSwanRound,
		Portfolio:        s.ledger.Clone(),
	}
	if ev, ok := s.gate.PendingEvent(); ok {
		snap.PendingBlackSwan = &ev
	}
	return snap
}

// Feed returns the news feed visible to presentation layers: newest first,
// black swans excluded.
func (s *Session) Feed() []event.MarketEvent {
	return s.log.Feed()
}

// Events returns the full retained event history, newest first.
func (s *Session) Events() []event.MarketEvent {
	return s.log.Events()
}

// Trades returns the bounded trade history, newest first.
func (s *Session) Trades() []analytics.Trade {
	return s.trades.Trades()
}

// Reactions returns the bounded reaction records, newest first.
func (s *Session) Reactions() []analytics.ReactionRecord {
	return s.records.Records()
}

// LeaderboardEntry snapshots the current result for ranking.
func (s *Session) LeaderboardEntry() LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LeaderboardEntry{
		PlayerName:      s.cfg.PlayerName,
		Score:           s.score,
		Streak:          s.streak,
		Title:           s.title,
		PortfolioValue:  s.ledger.Value(),
		RoundsCompleted: s.roundsCompleted,
		Timestamp:       s.now(),
	}
}
