package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/league-bot/models"
)

var ErrStandingTournamentInvalid = errors.New("standing tournament conflict or invalid")

type TournamentStandingRepository interface {
	// BatchCreate stores the final table; rank is the position in standings, starting at 1.
	BatchCreate(ctx context.Context, exec SQLExecutor, tournamentID string, standings []models.Standing) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Standing, error)
}

type postgresTournamentStandingRepository struct {
	db *sql.DB
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentStandingRepository) BatchCreate(ctx context.Context, exec SQLExecutor, tournamentID string, standings []models.Standing) error {
	if len(standings) == 0 {
		return nil
	}

	stmt, err := r.getExecutor(exec).PrepareContext(ctx, `
		INSERT INTO tournament_standings
		    (tournament_id, rank, team, seed, points, games_played, wins, draws, losses, score_for, score_against)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("BatchCreate failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, s := range standings {
		_, err = stmt.ExecContext(ctx,
			tournamentID, i+1, s.Team, s.Seed, s.Points, s.Games,
			s.Wins, s.Draws, s.Losses, s.Scored, s.Conceded,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return ErrStandingTournamentInvalid
			}
			return fmt.Errorf("BatchCreate failed for team %s: %w", s.Team, err)
		}
	}
	return nil
}

func (r *postgresTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Standing, error) {
	query := `
		SELECT team, seed, points, games_played, wins, draws, losses, score_for, score_against
		FROM tournament_standings
		WHERE tournament_id = $1
		ORDER BY rank ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var s models.Standing
		if err := rows.Scan(&s.Team, &s.Seed, &s.Points, &s.Games, &s.Wins, &s.Draws, &s.Losses, &s.Scored, &s.Conceded); err != nil {
			return nil, err
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
