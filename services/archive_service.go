package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Nihilantropy/ft-transcendence-sub006/models"
	"github.com/Nihilantropy/ft-transcendence-sub006/storage"
)

// archiveService writes completed tournaments to object storage as
// JSON documents under tournaments/<id>.json.
type archiveService struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewArchiveService(uploader storage.FileUploader, logger *slog.Logger) Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &archiveService{uploader: uploader, logger: logger}
}

func (s *archiveService) ArchiveTournament(ctx context.Context, tournament *models.Tournament) error {
	payload, err := json.MarshalIndent(tournament, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize tournament %s: %w", tournament.ID, err)
	}

	key := fmt.Sprintf("tournaments/%s.json", tournament.ID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to upload tournament archive: %w", err)
	}

	s.logger.Info("tournament archived",
		slog.String("tournament_id", tournament.ID),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return nil
}
