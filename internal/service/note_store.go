package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/metrics"
	"notes-sync-server/internal/repository"

	"github.com/sirupsen/logrus"
)

// NoteStore owns the in-memory note list and mirrors it from the remote
// collection. Every successful mutation is followed by a full reload.
type NoteStore struct {
	repo    repository.NoteRepository
	logger  logrus.FieldLogger
	metrics *metrics.Metrics

	mu    sync.RWMutex
	notes []domain.Note
	state domain.StoreState

	subMu       sync.RWMutex
	subscribers []func([]domain.Note)

	// serializes remote calls so reloads observe writes in issue order
	opMu sync.Mutex
}

func NewNoteStore(repo repository.NoteRepository, logger logrus.FieldLogger, m *metrics.Metrics) *NoteStore {
	return &NoteStore{
		repo:    repo,
		logger:  logger,
		metrics: m,
		notes:   []domain.Note{},
		state:   domain.StoreUninitialized,
	}
}

// Subscribe registers fn to receive a copy of the list after every reload.
func (s *NoteStore) Subscribe(fn func([]domain.Note)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Notes returns a copy of the current in-memory list.
func (s *NoteStore) Notes() []domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotes(s.notes)
}

func (s *NoteStore) State() domain.StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Find looks a note up by its derived identifier in the in-memory list.
func (s *NoteStore) Find(identifier string) (domain.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.Identifier() == identifier {
			return n, true
		}
	}
	return domain.Note{}, false
}

// Get reads a single document from the collection by id, bypassing the
// in-memory list.
func (s *NoteStore) Get(ctx context.Context, id string) (domain.Note, error) {
	if id == "" {
		return domain.Note{}, domain.ErrMissingIdentifier
	}

	note, err := s.repo.FindByID(ctx, id)
	s.metrics.StoreOperation("get", err)
	if err != nil {
		if !IsNotFound(err) {
			s.logger.WithError(err).WithField("note_id", id).Error("error getting note")
		}
		return domain.Note{}, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	return *note, nil
}

// FetchAll replaces the in-memory list with the collection contents.
// Documents that do not decode as notes are skipped. On error the list is
// left as it was.
func (s *NoteStore) FetchAll(ctx context.Context) ([]domain.Note, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.fetchAll(ctx)
}

func (s *NoteStore) fetchAll(ctx context.Context) ([]domain.Note, error) {
	s.setState(domain.StoreLoading)

	notes, err := s.repo.List(ctx)
	s.metrics.StoreOperation("fetch_all", err)
	if err != nil {
		s.setState(domain.StoreReady)
		s.logger.WithError(err).Error("error getting notes")
		return s.Notes(), err
	}
	if notes == nil {
		notes = []domain.Note{}
	}

	s.mu.Lock()
	s.notes = notes
	s.state = domain.StoreReady
	s.mu.Unlock()

	s.metrics.SetStoreSize(len(notes))
	s.logger.WithField("count", len(notes)).Info("got notes from collection")

	snapshot := cloneNotes(notes)
	s.notify(snapshot)
	return snapshot, nil
}

// UpdateTitle writes only the title field of note's document, then reloads.
// Notes that were never persisted are rejected with ErrMissingIdentifier.
func (s *NoteStore) UpdateTitle(ctx context.Context, note domain.Note, newTitle string) error {
	log := s.logger.WithFields(logrus.Fields{"note_id": note.ID, "nid": note.NID})

	if !note.HasID() {
		s.metrics.StoreOperation("update_title", domain.ErrMissingIdentifier)
		log.Warn("note has no id")
		return domain.ErrMissingIdentifier
	}

	title := strings.TrimSpace(newTitle)
	if title == "" {
		s.metrics.StoreOperation("update_title", domain.ErrEmptyTitle)
		log.Warn("refusing empty title")
		return domain.ErrEmptyTitle
	}

	if utf8.RuneCountInString(title) > domain.MaxTitleLength {
		s.metrics.StoreOperation("update_title", domain.ErrTitleTooLong)
		log.Warn("refusing oversized title")
		return domain.ErrTitleTooLong
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.repo.UpdateFields(ctx, note.ID, map[string]interface{}{"title": title})
	s.metrics.StoreOperation("update_title", err)
	if err != nil {
		log.WithError(err).Error("error updating note")
		return fmt.Errorf("failed to update note %s: %w", note.ID, err)
	}

	log.WithField("title", title).Info("updated note")

	_, err = s.fetchAll(ctx)
	return err
}

// Delete removes the document with the given id, then reloads.
func (s *NoteStore) Delete(ctx context.Context, id string) error {
	log := s.logger.WithField("note_id", id)

	if id == "" {
		s.metrics.StoreOperation("delete", domain.ErrMissingIdentifier)
		log.Warn("note has no id")
		return domain.ErrMissingIdentifier
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.repo.Delete(ctx, id)
	s.metrics.StoreOperation("delete", err)
	if err != nil {
		log.WithError(err).Error("error deleting note")
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}

	log.Info("deleted note")

	_, err = s.fetchAll(ctx)
	return err
}

// BulkImport creates one document per note, one after the other. A failed
// create is logged and counted; it does not stop the remaining notes. The
// list is reloaded once at the end.
func (s *NoteStore) BulkImport(ctx context.Context, notes []domain.Note) (*domain.ImportReport, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	report := domain.NewImportReport(len(notes))

	for _, note := range notes {
		log := s.logger.WithFields(logrus.Fields{"nid": note.NID, "title": note.Title})

		note.ID = ""
		id, err := s.repo.Create(ctx, note)
		s.metrics.ImportedNote(err)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("nid %d: %v", note.NID, err))
			log.WithError(err).Error("error uploading note")
			continue
		}

		report.Created++
		report.CreatedIDs = append(report.CreatedIDs, id)
		log.WithField("note_id", id).Info("uploaded note")
	}

	s.metrics.StoreOperation("bulk_import", nil)

	_, err := s.fetchAll(ctx)
	return report, err
}

func (s *NoteStore) setState(state domain.StoreState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *NoteStore) notify(notes []domain.Note) {
	s.subMu.RLock()
	subscribers := append([]func([]domain.Note){}, s.subscribers...)
	s.subMu.RUnlock()

	for _, fn := range subscribers {
		fn(cloneNotes(notes))
	}
}

func cloneNotes(notes []domain.Note) []domain.Note {
	out := make([]domain.Note, len(notes))
	copy(out, notes)
	return out
}

// IsNotFound reports whether err means the target document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNoteNotFound)
}
