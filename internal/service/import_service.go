package service

import (
	"context"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/webclient"

	"github.com/sirupsen/logrus"
)

// NoteSource yields the notes to seed the collection with.
type NoteSource interface {
	FetchRemoteNotes(ctx context.Context) ([]domain.Note, error)
}

type ImportService struct {
	client   *webclient.Client
	endpoint string
	logger   logrus.FieldLogger
}

func NewImportService(client *webclient.Client, endpoint string, logger logrus.FieldLogger) *ImportService {
	return &ImportService{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// FetchRemoteNotes downloads the notes list. It always returns a non-nil
// slice; on failure the slice is empty and err carries the request kind.
func (s *ImportService) FetchRemoteNotes(ctx context.Context) ([]domain.Note, error) {
	notes, err := webclient.Request[[]domain.Note](ctx, s.client, s.endpoint, webclient.MethodGet, nil)
	if err != nil {
		s.logger.WithError(err).WithField("kind", string(webclient.KindOf(err))).Error("failed to fetch notes from api")
		return []domain.Note{}, err
	}

	// API notes are not persisted yet, whatever the payload claims.
	for i := range notes {
		notes[i].ID = ""
	}

	s.logger.WithField("count", len(notes)).Info("fetched notes from api")
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}
