// Package game implements a levelled card-matching game: a timed board of
// paired tiles with level-scaled bonuses, penalties and combo scoring.
package game

import "time"

// MaxLevel is the final level. Clearing it wins the game.
const MaxLevel = 10

// PointsPerMatch is multiplied by the current level for every match.
const PointsPerMatch = 100

// ComboPoints is awarded per streak step on top of the level points.
const ComboPoints = 20

// Settings holds the per-level difficulty parameters.
type Settings struct {
	Level          int
	Pairs          int
	Tiles          int
	Cols           int
	TimeLimit      int // seconds
	BonusSeconds   int
	PenaltySeconds int
}

// Rows returns the number of grid rows for the level's board.
func (s Settings) Rows() int {
	if s.Cols == 0 {
		return 0
	}
	return (s.Tiles + s.Cols - 1) / s.Cols
}

// TimeLimitDuration returns TimeLimit as a time.Duration.
func (s Settings) TimeLimitDuration() time.Duration {
	return time.Duration(s.TimeLimit) * time.Second
}

// LevelSettings returns the difficulty for level, clamped into 1..MaxLevel.
// Each level adds two pairs, shaves ten seconds off the clock (never below
// 30), shrinks the match bonus and grows the mismatch penalty (capped at 12).
func LevelSettings(level int) Settings {
	level = clampLevel(level)
	pairs := level * 2
	cols := 4
	if level == 1 {
		cols = 2
	}
	return Settings{
		Level:          level,
		Pairs:          pairs,
		Tiles:          pairs * 2,
		Cols:           cols,
		TimeLimit:      max(30, 130-level*10),
		BonusSeconds:   max(1, 6-level/2),
		PenaltySeconds: min(12, 4+level),
	}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// MatchPoints is the score awarded for a match at level with the streak
// already incremented to combo.
func MatchPoints(level, combo int) int {
	return PointsPerMatch*level + combo*ComboPoints
}
