// Package persist is the long-term storage collaborator. Every call is
// best-effort from the simulation's point of view: failures are logged by
// the caller and never gate a state transition.
package persist

import (
	"github.com/hedgelabs/hedge-sim/internal/portfolio"
)

// Store persists games, rounds, scores and price snapshots.
type Store interface {
	// CreateOrGetGame returns the current active game, creating one if needed.
	CreateOrGetGame(startingCash float64) (gameID int64, err error)

	// GetOrCreateParticipant returns the participant for (game, name).
	GetOrCreateParticipant(gameID int64, name string, startingCash float64) (participantID int64, err error)

	// CreateOrGetRound returns the round for (game, roundNo), creating it if needed.
	CreateOrGetRound(gameID int64, roundNo int) (roundID int64, err error)

	// EndRound marks a round finished.
	EndRound(roundID int64) error

	// SaveRoundScore records a participant's round outcome. reactionMs is nil
	// when the player did not react inside the window.
	SaveRoundScore(participantID, roundID int64, pnlDelta float64, reacted bool, reactionMs *int64) error

	// CaptureSnapshots stores the current price of every holding.
	CaptureSnapshots(p portfolio.Portfolio, gameID int64, roundID int64) error

	Close() error
}

// Noop discards everything. Used when no database is configured or the
// SQLite store failed to open.
type Noop struct{}

func (Noop) CreateOrGetGame(float64) (int64, error)                        { return 0, nil }
func (Noop) GetOrCreateParticipant(int64, string, float64) (int64, error)  { return 0, nil }
func (Noop) CreateOrGetRound(int64, int) (int64, error)                    { return 0, nil }
func (Noop) EndRound(int64) error                                          { return nil }
func (Noop) SaveRoundScore(int64, int64, float64, bool, *int64) error      { return nil }
func (Noop) CaptureSnapshots(portfolio.Portfolio, int64, int64) error      { return nil }
func (Noop) Close() error                                                  { return nil }
