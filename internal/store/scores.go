package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/theirongolddev/calciq/internal/model"
)

// RecordScore appends a finished game to the leaderboard. A zero ID or
// PlayedAt is filled in.
func (s *Store) RecordScore(ctx context.Context, e model.ScoreEntry) (model.ScoreEntry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.PlayedAt.IsZero() {
		e.PlayedAt = s.now()
	}
	e.PlayedAt = e.PlayedAt.UTC()

	victory := 0
	if e.Victory {
		victory = 1
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO scores (id, score, level, victory, played_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(), e.Score, e.Level, victory, formatTime(e.PlayedAt))
	if err != nil {
		return model.ScoreEntry{}, fmt.Errorf("record score: %w", err)
	}
	return e, nil
}

// TopScores returns up to n entries, highest score first. Ties go to the
// earlier game.
func (s *Store) TopScores(ctx context.Context, n int) ([]model.ScoreEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, score, level, victory, played_at
		FROM scores ORDER BY score DESC, played_at ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ScoreEntry
	for rows.Next() {
		var (
			e            model.ScoreEntry
			id, playedAt string
			victory      int
		)
		if err := rows.Scan(&id, &e.Score, &e.Level, &victory, &playedAt); err != nil {
			return nil, fmt.Errorf("top scores: %w", err)
		}
		e.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("top scores: parse id %q: %w", id, err)
		}
		e.Victory = victory != 0
		e.PlayedAt, err = parseTime(playedAt)
		if err != nil {
			return nil, fmt.Errorf("top scores: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ScoreStats summarizes every recorded game.
func (s *Store) ScoreStats(ctx context.Context) (model.ScoreStats, error) {
	var st model.ScoreStats
	err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(victory), 0),
		COALESCE(MAX(score), 0),
		COALESCE(AVG(score), 0),
		COALESCE(MAX(level), 0)
		FROM scores`).Scan(&st.Games, &st.Victories, &st.Best, &st.Average, &st.MaxLevel)
	if err != nil {
		return model.ScoreStats{}, fmt.Errorf("score stats: %w", err)
	}
	return st, nil
}
