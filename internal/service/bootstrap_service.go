package service

import (
	"context"
	"fmt"
	"sync"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/repository"

	"github.com/sirupsen/logrus"
)

// BootstrapService seeds the collection from the remote API exactly once,
// gated by the persisted sync flag.
type BootstrapService struct {
	source NoteSource
	store  *NoteStore
	flag   repository.SyncFlagRepository
	logger logrus.FieldLogger

	mu sync.Mutex
}

func NewBootstrapService(
	source NoteSource,
	store *NoteStore,
	flag repository.SyncFlagRepository,
	logger logrus.FieldLogger,
) *BootstrapService {
	return &BootstrapService{
		source: source,
		store:  store,
		flag:   flag,
		logger: logger,
	}
}

func (s *BootstrapService) Status(ctx context.Context) (*domain.SyncStatus, error) {
	done, err := s.flag.IsSet(ctx)
	if err != nil {
		return nil, err
	}

	status := &domain.SyncStatus{Key: s.flag.Key(), State: domain.SyncPending, Done: done}
	if done {
		status.State = domain.SyncDone
	}
	return status, nil
}

// EnsureImported runs the import unless the flag says it already completed.
// A nil report with a nil error means there was nothing to do.
//
// The flag is set only when every note was written. After a partial failure
// the next call imports just the notes whose nid is not in the collection.
func (s *BootstrapService) EnsureImported(ctx context.Context) (*domain.ImportReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	done, err := s.flag.IsSet(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to read sync flag")
		return nil, err
	}
	if done {
		s.logger.Debug("notes already imported")
		return nil, nil
	}

	remote, err := s.source.FetchRemoteNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote notes: %w", err)
	}
	if len(remote) == 0 {
		s.logger.Info("remote api returned no notes, import stays pending")
		return domain.NewImportReport(0), nil
	}

	existing, err := s.store.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection before import: %w", err)
	}

	pending, skipped := missingNotes(remote, existing)

	report, err := s.store.BulkImport(ctx, pending)
	report.Requested = len(remote)
	report.Skipped = skipped
	if err != nil {
		s.logger.WithError(err).Warn("reload after import failed")
	}

	if !report.Complete() {
		s.logger.WithFields(logrus.Fields{
			"created": report.Created,
			"failed":  report.Failed,
		}).Warn("import incomplete, sync flag left unset")
		return report, nil
	}

	if err := s.flag.Set(ctx); err != nil {
		s.logger.WithError(err).Error("failed to set sync flag")
		return report, err
	}

	s.logger.WithFields(logrus.Fields{
		"created": report.Created,
		"skipped": report.Skipped,
	}).Info("initial import complete")

	return report, nil
}

// RunOnce is the startup entry point; failures are logged, never returned.
func (s *BootstrapService) RunOnce(ctx context.Context) {
	if _, err := s.EnsureImported(ctx); err != nil {
		s.logger.WithError(err).Warn("initial import did not complete")
	}
}

func missingNotes(remote, existing []domain.Note) ([]domain.Note, int) {
	present := make(map[int]bool, len(existing))
	for _, n := range existing {
		present[n.NID] = true
	}

	var pending []domain.Note
	skipped := 0
	for _, n := range remote {
		if present[n.NID] {
			skipped++
			continue
		}
		present[n.NID] = true
		pending = append(pending, n)
	}
	return pending, skipped
}
