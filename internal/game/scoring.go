package game

import (
	"math"
	"sort"
	"time"
)

// TitleTier names a rank unlocked at a survival-streak threshold.
type TitleTier struct {
	MinStreak int
	Title     string
}

// TitleTiers is the fixed ascending tier table. Lookup takes the highest
// satisfied threshold.
var TitleTiers = []TitleTier{
	{MinStreak: 0, Title: "Novice Trader"},
	{MinStreak: 3, Title: "Market Strategist"},
	{MinStreak: 5, Title: "Senior Trader"},
	{MinStreak: 8, Title: "Portfolio Manager"},
	{MinStreak: 12, Title: "Market Veteran"},
	{MinStreak: 15, Title: "Trading Legend"},
}

// TitleForStreak returns the highest tier whose threshold the streak meets.
func TitleForStreak(streak int) string {
	for i := len(TitleTiers) - 1; i >= 0; i-- {
		if streak >= TitleTiers[i].MinStreak {
			return TitleTiers[i].Title
		}
	}
	return TitleTiers[0].Title
}

const (
	comboStreakThreshold = 5
	comboMultiplier      = 1.5
	blackSwanPenalty     = 0.8
	pointsPerPnLPct      = 10
	pointsPerStreak      = 50
	// SurvivalThreshold is the minimum fraction of initial portfolio value
	// required to extend the streak.
	SurvivalThreshold = 0.2
)

// Score computes the round score: 10 points per percent gain (losses floor
// at zero), 50 per streak, a 1.5x combo at streak 5+, and a 0.8x penalty
// when a black swan hit this round.
func Score(pnlPercent float64, streak int, blackSwanOccurred bool) int {
	base := math.Max(0, pnlPercent*pointsPerPnLPct)
	total := base + float64(streak*pointsPerStreak)
	if streak >= comboStreakThreshold {
		total *= comboMultiplier
	}
	if blackSwanOccurred {
		total *= blackSwanPenalty
	}
	return int(math.Round(total))
}

// Survived reports whether the portfolio kept enough of its initial value
// to extend the streak.
func Survived(portfolioValue, initialValue float64) bool {
	return portfolioValue >= SurvivalThreshold*initialValue
}

// LeaderboardEntry is one finished-game result.
type LeaderboardEntry struct {
	PlayerName      string    `json:"playerName"`
	Score           int       `json:"score"`
	Streak          int       `json:"streak"`
	Title           string    `json:"title"`
	PortfolioValue  float64   `json:"portfolioValue"`
	RoundsCompleted int       `json:"roundsCompleted"`
	Timestamp       time.Time `json:"timestamp"`
}

// SortLeaderboard orders entries by score, then streak, then rounds
// completed, all descending. The input is not modified.
func SortLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Streak != out[j].Streak {
			return out[i].Streak > out[j].Streak
		}
		return out[i].RoundsCompleted > out[j].RoundsCompleted
	})
	return out
}
