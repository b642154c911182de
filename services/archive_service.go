package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-bot/models"
	"github.com/Dosada05/league-bot/repositories"
	"github.com/Dosada05/league-bot/storage"
)

const reportContentType = "application/json"

// ArchiveStore persists finished tournaments. Implemented by repositories.ArchiveStore.
type ArchiveStore interface {
	Save(ctx context.Context, t *models.ArchivedTournament) error
	UpdateReportURL(ctx context.Context, id string, reportURL *string) error
	Get(ctx context.Context, id string) (*models.ArchivedTournament, error)
	ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]models.ArchivedTournament, error)
}

type ArchiveService interface {
	Archiver
	GetByID(ctx context.Context, id string) (*models.ArchivedTournament, error)
	ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]models.ArchivedTournament, error)
}

type archiveService struct {
	store    ArchiveStore         // nil when no database is configured
	uploader storage.FileUploader // nil when no bucket is configured
	logger   *slog.Logger
}

func NewArchiveService(store ArchiveStore, uploader storage.FileUploader, logger *slog.Logger) ArchiveService {
	return &archiveService{store: store, uploader: uploader, logger: logger}
}

// Archive writes the report to the database and the bucket in parallel. The public
// report link is stored once both succeed; an uploaded object is removed again when
// the database write fails.
func (s *archiveService) Archive(ctx context.Context, report FinalReport) error {
	if s.store == nil && s.uploader == nil {
		return nil
	}

	archived := archivedFromReport(report)
	var uploaded *storage.UploadResult

	g, gctx := errgroup.WithContext(ctx)
	if s.store != nil {
		g.Go(func() error {
			return s.store.Save(gctx, archived)
		})
	}
	if s.uploader != nil {
		g.Go(func() error {
			body, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report %s: %w", report.TournamentID, err)
			}
			res, err := s.uploader.Upload(gctx, storage.ReportKey(report.ChatID, report.TournamentID), reportContentType, bytes.NewReader(body))
			if err != nil {
				return err
			}
			uploaded = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if uploaded != nil {
			if delErr := s.uploader.Delete(ctx, uploaded.Key); delErr != nil {
				s.logger.Warn("failed to remove orphaned report", slog.String("key", uploaded.Key), slog.Any("error", delErr))
			}
		}
		return fmt.Errorf("failed to archive tournament %s: %w", report.TournamentID, err)
	}

	if uploaded == nil {
		return nil
	}
	s.logger.Info("tournament report uploaded", slog.String("tournament_id", report.TournamentID), slog.String("url", uploaded.Location))
	if s.store == nil || uploaded.Location == "" {
		return nil
	}
	if err := s.store.UpdateReportURL(ctx, report.TournamentID, &uploaded.Location); err != nil {
		return fmt.Errorf("failed to link report of %s: %w", report.TournamentID, err)
	}
	return nil
}

func (s *archiveService) GetByID(ctx context.Context, id string) (*models.ArchivedTournament, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}
	t, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load archived tournament %s: %w", id, err)
	}
	return t, nil
}

func (s *archiveService) ListByChat(ctx context.Context, chatID int64, limit, offset int) ([]models.ArchivedTournament, error) {
	if s.store == nil {
		return nil, ErrArchiveDisabled
	}
	list, err := s.store.ListByChat(ctx, chatID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived tournaments of chat %d: %w", chatID, err)
	}
	if list == nil {
		return []models.ArchivedTournament{}, nil
	}
	return list, nil
}

func archivedFromReport(r FinalReport) *models.ArchivedTournament {
	return &models.ArchivedTournament{
		ID:           r.TournamentID,
		ChatID:       r.ChatID,
		Teams:        r.Teams,
		RoundsPlayed: r.Rounds,
		Reason:       r.Reason,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		Standings:    r.Standings,
		Matches:      r.Matches,
	}
}
