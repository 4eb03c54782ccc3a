package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"notes-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

// NoteRepository is the remote document collection the note store mirrors.
type NoteRepository interface {
	List(ctx context.Context) ([]domain.Note, error)
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	Create(ctx context.Context, note domain.Note) (string, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type noteDoc struct {
	ID    string  `json:"_id,omitempty"`
	Rev   string  `json:"_rev,omitempty"`
	NID   *int    `json:"nid"`
	Title *string `json:"title"`
	Image *string `json:"image"`
}

type CouchNoteRepository struct {
	db *kivik.DB
}

func NewNoteRepository(client *kivik.Client, dbName string) *CouchNoteRepository {
	return &CouchNoteRepository{
		db: client.DB(dbName),
	}
}

func (r *CouchNoteRepository) List(ctx context.Context) ([]domain.Note, error) {
	rows := r.db.AllDocs(ctx, kivik.Param("include_docs", true))
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		id, err := rows.ID()
		if err != nil || strings.HasPrefix(id, "_design/") {
			continue
		}

		var doc noteDoc
		if err := rows.ScanDoc(&doc); err != nil {
			continue
		}

		note, ok := docToNote(&doc)
		if !ok {
			continue
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

func (r *CouchNoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	var doc noteDoc
	if err := r.db.Get(ctx, id).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	note, ok := docToNote(&doc)
	if !ok {
		return nil, &domain.DecodeError{Kind: domain.DecodeMissingKey, Field: "note"}
	}
	return &note, nil
}

// Create stores note as a new document and returns the id CouchDB assigned.
func (r *CouchNoteRepository) Create(ctx context.Context, note domain.Note) (string, error) {
	docID, _, err := r.db.CreateDoc(ctx, noteToDoc(note))
	if err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}
	return docID, nil
}

func (r *CouchNoteRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	var existingDoc map[string]interface{}
	if err := r.db.Get(ctx, id).ScanDoc(&existingDoc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return domain.ErrNoteNotFound
		}
		return fmt.Errorf("failed to fetch existing note for update: %w", err)
	}

	for key, value := range fields {
		existingDoc[key] = value
	}

	if _, err := r.db.Put(ctx, id, existingDoc); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *CouchNoteRepository) Delete(ctx context.Context, id string) error {
	rev, err := r.db.GetRev(ctx, id)
	if err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return domain.ErrNoteNotFound
		}
		return fmt.Errorf("failed to fetch note revision: %w", err)
	}

	if _, err := r.db.Delete(ctx, id, rev); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return domain.ErrNoteNotFound
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}

func noteToDoc(note domain.Note) *noteDoc {
	nid, title, image := note.NID, note.Title, note.Image
	return &noteDoc{
		NID:   &nid,
		Title: &title,
		Image: &image,
	}
}

// docToNote reports false for documents missing one of the note fields.
func docToNote(doc *noteDoc) (domain.Note, bool) {
	if doc.ID == "" || doc.NID == nil || doc.Title == nil || doc.Image == nil {
		return domain.Note{}, false
	}
	return domain.Note{
		ID:    doc.ID,
		NID:   *doc.NID,
		Title: *doc.Title,
		Image: *doc.Image,
	}, true
}
