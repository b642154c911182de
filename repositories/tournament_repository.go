package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/league-bot/models"
)

var (
	ErrTournamentNotFound = errors.New("archived tournament not found")
	ErrTournamentConflict = errors.New("tournament is already archived")
)

const defaultListLimit = 20

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, t *models.ArchivedTournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.ArchivedTournament, error)
	ListByChat(ctx context.Context, exec SQLExecutor, chatID int64, limit, offset int) ([]models.ArchivedTournament, error)
	UpdateReportURL(ctx context.Context, exec SQLExecutor, id string, reportURL *string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.ArchivedTournament) error {
	query := `
		INSERT INTO tournaments (id, chat_id, teams, rounds_played, reason, report_url, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		t.ID, t.ChatID, pq.Array(teamKeysToStrings(t.Teams)), t.RoundsPlayed, t.Reason, t.ReportURL, t.StartedAt, t.FinishedAt,
	)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.ArchivedTournament, error) {
	query := `
		SELECT id, chat_id, teams, rounds_played, reason, report_url, started_at, finished_at
		FROM tournaments
		WHERE id = $1`

	t, err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByChat(ctx context.Context, exec SQLExecutor, chatID int64, limit, offset int) ([]models.ArchivedTournament, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, chat_id, teams, rounds_played, reason, report_url, started_at, finished_at
		FROM tournaments
		WHERE chat_id = $1
		ORDER BY finished_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for chat %d: %w", chatID, err)
	}
	defer rows.Close()

	tournaments := make([]models.ArchivedTournament, 0)
	for rows.Next() {
		t, errScan := scanTournament(rows)
		if errScan != nil {
			return nil, errScan
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateReportURL(ctx context.Context, exec SQLExecutor, id string, reportURL *string) error {
	query := `UPDATE tournaments SET report_url = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, reportURL, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func scanTournament(row interface{ Scan(...interface{}) error }) (*models.ArchivedTournament, error) {
	var (
		t     models.ArchivedTournament
		teams []string
	)
	err := row.Scan(&t.ID, &t.ChatID, pq.Array(&teams), &t.RoundsPlayed, &t.Reason, &t.ReportURL, &t.StartedAt, &t.FinishedAt)
	if err != nil {
		return nil, err
	}
	t.Teams = make([]models.TeamKey, len(teams))
	for i, key := range teams {
		t.Teams[i] = models.TeamKey(key)
	}
	return &t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrTournamentConflict
	}
	return err
}

func teamKeysToStrings(keys []models.TeamKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
