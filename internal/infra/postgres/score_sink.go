package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"knowball-service/internal/domain"
)

// ScoreSink persists round results: one row per finished game plus a lifetime
// totals upsert. The per-round score stays signed; the floor at zero applies
// only to the cumulative total, matching how the game displays negative round
// scores but never negative lifetime points.
type ScoreSink struct {
	pool *pgxpool.Pool
}

func NewScoreSink(pool *pgxpool.Pool) *ScoreSink {
	return &ScoreSink{pool: pool}
}

func (s *ScoreSink) SaveResult(ctx context.Context, result domain.RoundResult) error {
	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO scores (user_key, score, correct_count, total_questions, max_streak)
			VALUES ($1, $2, $3, $4, $5)`,
			result.UserKey, result.Score, result.CorrectCount, result.TotalQuestions, result.MaxStreak,
		); err != nil {
			return fmt.Errorf("insert score: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO players (user_key, total_points, games_played, longest_streak)
			VALUES ($1, GREATEST(0, $2), 1, $3)
			ON CONFLICT (user_key) DO UPDATE SET
				total_points   = GREATEST(0, players.total_points + $2),
				games_played   = players.games_played + 1,
				longest_streak = GREATEST(players.longest_streak, $3)`,
			result.UserKey, result.Score, result.MaxStreak,
		); err != nil {
			return fmt.Errorf("update player totals: %w", err)
		}
		return nil
	})
}

// Totals reads the lifetime record for userKey.
func (s *ScoreSink) Totals(ctx context.Context, userKey string) (domain.PlayerTotals, error) {
	var totals domain.PlayerTotals
	err := s.pool.QueryRow(ctx, `
		SELECT user_key, total_points, games_played, longest_streak
		FROM players WHERE user_key = $1`, userKey,
	).Scan(&totals.UserKey, &totals.TotalPoints, &totals.GamesPlayed, &totals.LongestStreak)
	if err != nil {
		return domain.PlayerTotals{}, fmt.Errorf("load player totals: %w", err)
	}
	return totals, nil
}
