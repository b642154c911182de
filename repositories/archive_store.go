package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/league-bot/models"
)

// ArchiveStore writes and reads a finished tournament together with its table and results.
type ArchiveStore struct {
	db          *sql.DB
	tournaments TournamentRepository
	standings   TournamentStandingRepository
	matches     MatchResultRepository
}

func NewArchiveStore(db *sql.DB) *ArchiveStore {
	return &ArchiveStore{
		db:          db,
		tournaments: NewPostgresTournamentRepository(db),
		standings:   NewPostgresTournamentStandingRepository(db),
		matches:     NewPostgresMatchResultRepository(db),
	}
}

func (s *ArchiveStore) Save(ctx context.Context, t *models.ArchivedTournament) error {
	return runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.tournaments.Create(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
		}
		if err := s.standings.BatchCreate(ctx, tx, t.ID, t.Standings); err != nil {
			return fmt.Errorf("failed to save standings of %s: %w", t.ID, err)
		}
		if err := s.matches.BatchCreate(ctx, tx, t.ID, t.Matches); err != nil {
			return fmt.Errorf("failed to save results of %s: %w", t.ID, err)
		}
		return nil
	})
}

func (s *ArchiveStore) UpdateReportURL(ctx context.Context, id string, reportURL *string) error {
	return s.tournaments.UpdateReportURL(ctx, nil, id, reportURL)
}

func (s *ArchiveStore) Get(ctx context.Context, id string) (*models.ArchivedTournament, error) {
	t, err := s.tournaments.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if t.Standings, err = s.standings.ListByTournament(ctx, nil, id); err != nil {
		return nil, fmt.Errorf("failed to load standings of %s: %w", id, err)
	}
	if t.Matches, err = s.matches.ListByTournament(ctx, nil, id); err != nil {
		return nil, fmt.Errorf("failed to load results of %s: %w", id, err)
	}
	return t, nil
}

func (s *ArchiveStore) ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]models.ArchivedTournament, error) {
	return s.tournaments.ListByChat(ctx, nil, chatID, limit, offset)
}
