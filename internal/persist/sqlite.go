package persist

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hedgelabs/hedge-sim/internal/observ"
	"github.com/hedgelabs/hedge-sim/internal/portfolio"
)

// SQLiteStore persists sessions to a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so reads (dashboards, post-game analysis) don't block the writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	observ.Log("sqlite_store_opened", map[string]any{"path": dbPath})
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			starting_cash REAL NOT NULL,
			status        TEXT NOT NULL DEFAULT 'active',
			created_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id       INTEGER NOT NULL REFERENCES games(id),
			name          TEXT NOT NULL,
			starting_cash REAL NOT NULL,
			UNIQUE(game_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id    INTEGER NOT NULL REFERENCES games(id),
			round_no   INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at   INTEGER,
			UNIQUE(game_id, round_no)
		)`,
		`CREATE TABLE IF NOT EXISTS round_scores (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			participant_id INTEGER NOT NULL REFERENCES participants(id),
			round_id       INTEGER NOT NULL REFERENCES rounds(id),
			pnl_delta      REAL NOT NULL,
			reacted        INTEGER NOT NULL,
			reaction_ms    INTEGER,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS price_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id     INTEGER NOT NULL REFERENCES games(id),
			round_id    INTEGER,
			ticker      TEXT NOT NULL,
			price       REAL NOT NULL,
			shares      INTEGER NOT NULL,
			captured_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_game ON price_snapshots(game_id, captured_at)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_round ON round_scores(round_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) CreateOrGetGame(startingCash float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRow(`SELECT id FROM games WHERE status = 'active' ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query active game: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO games (starting_cash, status, created_at) VALUES (?, 'active', ?)`,
		startingCash, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetOrCreateParticipant(gameID int64, name string, startingCash float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRow(`SELECT id FROM participants WHERE game_id = ? AND name = ?`, gameID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query participant: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO participants (game_id, name, starting_cash) VALUES (?, ?, ?)`,
		gameID, name, startingCash)
	if err != nil {
		return 0, fmt.Errorf("insert participant: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) CreateOrGetRound(gameID int64, roundNo int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.db.QueryRow(`SELECT id FROM rounds WHERE game_id = ? AND round_no = ?`, gameID, roundNo).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("query round: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO rounds (game_id, round_no, started_at) VALUES (?, ?, ?)`,
		gameID, roundNo, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert round: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) EndRound(roundID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`UPDATE rounds SET ended_at = ? WHERE id = ?`, time.Now().Unix(), roundID); err != nil {
		return fmt.Errorf("end round %d: %w", roundID, err)
	}
	return nil
}

func (s *SQLiteStore) SaveRoundScore(participantID, roundID int64, pnlDelta float64, reacted bool, reactionMs *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ms any
	if reactionMs != nil {
		ms = *reactionMs
	}
	_, err := s.db.Exec(
		`INSERT INTO round_scores (participant_id, round_id, pnl_delta, reacted, reaction_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		participantID, roundID, pnlDelta, boolToInt(reacted), ms, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save round score: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CaptureSnapshots(p portfolio.Portfolio, gameID int64, roundID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	now := time.Now().UnixMilli()
	var round any
	if roundID > 0 {
		round = roundID
	}
	for _, h := range p.Holdings {
		if _, err := tx.Exec(
			`INSERT INTO price_snapshots (game_id, round_id, ticker, price, shares, captured_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			gameID, round, h.Ticker, h.Price, h.Shares, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert snapshot %s: %w", h.Ticker, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
