package model

import (
	"time"

	"github.com/google/uuid"
)

// ScoreEntry is one finished game on the leaderboard.
type ScoreEntry struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	Score    int       `json:"score" yaml:"score"`
	Level    int       `json:"level" yaml:"level"`
	Victory  bool      `json:"victory" yaml:"victory"`
	PlayedAt time.Time `json:"played_at" yaml:"played_at"`
}

// ScoreStats aggregates every recorded game.
type ScoreStats struct {
	Games     int     `json:"games"`
	Victories int     `json:"victories"`
	Best      int     `json:"best"`
	Average   float64 `json:"average"`
	MaxLevel  int     `json:"max_level"`
}
