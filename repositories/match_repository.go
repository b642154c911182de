package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/league-bot/models"
)

type MatchResultRepository interface {
	// BatchCreate keeps the log order in the seq column.
	BatchCreate(ctx context.Context, exec SQLExecutor, tournamentID string, results []models.MatchResult) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.MatchResult, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

func (r *postgresMatchResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchResultRepository) BatchCreate(ctx context.Context, exec SQLExecutor, tournamentID string, results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	stmt, err := r.getExecutor(exec).PrepareContext(ctx, `
		INSERT INTO match_results
		    (tournament_id, seq, round, home_team, away_team, home_score, away_score, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("BatchCreate failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, m := range results {
		_, err = stmt.ExecContext(ctx, tournamentID, i, m.Round, m.Home, m.Away, m.HomeScore, m.AwayScore, m.PlayedAt)
		if err != nil {
			return fmt.Errorf("BatchCreate failed for result %d (%s-%s, round %d): %w", i, m.Home, m.Away, m.Round, err)
		}
	}
	return nil
}

func (r *postgresMatchResultRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.MatchResult, error) {
	query := `
		SELECT round, home_team, away_team, home_score, away_score, played_at
		FROM match_results
		WHERE tournament_id = $1
		ORDER BY seq ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		var m models.MatchResult
		if err := rows.Scan(&m.Round, &m.Home, &m.Away, &m.HomeScore, &m.AwayScore, &m.PlayedAt); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}
