package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleForStreak(t *testing.T) {
	cases := []struct {
		streak int
		want   string
	}{
		{0, "Novice Trader"},
		{2, "Novice Trader"},
		{3, "Market Strategist"},
		{4, "Market Strategist"},
		{5, "Senior Trader"},
		{8, "Portfolio Manager"},
		{12, "Market Veteran"},
		{15, "Trading Legend"},
		{40, "Trading Legend"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TitleForStreak(tc.streak), "streak %d", tc.streak)
	}
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(0, 0, false))
	assert.Equal(t, 50, Score(0, 1, false))
	assert.Equal(t, 0, Score(-8.5, 0, false), "losses floor at zero points")
	assert.Equal(t, 120, Score(7, 1, false))
	assert.Equal(t, 215, Score(1.5, 4, false))
	// combo kicks in at streak 5: (20+250)*1.5
	assert.Equal(t, 405, Score(2, 5, false))
}

func TestScoreBlackSwanPenalty(t *testing.T) {
	assert.Equal(t, 40, Score(0, 1, true))
	// (50*10 + 5*50) * 1.5 * 0.8
	assert.Equal(t, 900, Score(50, 5, true))
}

func TestSurvived(t *testing.T) {
	assert.True(t, Survived(2000, 10000), "exactly at the 20% line survives")
	assert.True(t, Survived(2000.01, 10000))
	assert.False(t, Survived(1999.99, 10000))
}

func TestSortLeaderboard(t *testing.T) {
	in := []LeaderboardEntry{
		{PlayerName: "a", Score: 100, Streak: 2, RoundsCompleted: 4},
		{PlayerName: "b", Score: 300, Streak: 1, RoundsCompleted: 2},
		{PlayerName: "c", Score: 100, Streak: 5, RoundsCompleted: 1},
		{PlayerName: "d", Score: 100, Streak: 5, RoundsCompleted: 9},
	}
	out := SortLeaderboard(in)

	names := make([]string, len(out))
	for i, e := range out {
		names[i] = e.PlayerName
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, names)
	assert.Equal(t, "a", in[0].PlayerName, "input order untouched")
}
