package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"notes-sync-server/internal/domain"
)

type mockNoteRepo struct {
	notes     map[string]domain.Note
	nextID    int
	failNIDs  map[int]bool
	listErr   error
	updateErr error
	creates   int
	updates   []map[string]interface{}
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes:    make(map[string]domain.Note),
		failNIDs: make(map[int]bool),
	}
}

func (m *mockNoteRepo) seed(notes ...domain.Note) {
	for _, n := range notes {
		if n.ID == "" {
			m.nextID++
			n.ID = fmt.Sprintf("doc-%d", m.nextID)
		}
		m.notes[n.ID] = n
	}
}

func (m *mockNoteRepo) List(ctx context.Context) ([]domain.Note, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	notes := make([]domain.Note, 0, len(m.notes))
	for _, n := range m.notes {
		notes = append(notes, n)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].NID < notes[j].NID })
	return notes, nil
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	if n, exists := m.notes[id]; exists {
		return &n, nil
	}
	return nil, domain.ErrNoteNotFound
}

func (m *mockNoteRepo) Create(ctx context.Context, note domain.Note) (string, error) {
	m.creates++
	if m.failNIDs[note.NID] {
		return "", errors.New("write rejected")
	}
	m.nextID++
	note.ID = fmt.Sprintf("doc-%d", m.nextID)
	m.notes[note.ID] = note
	return note.ID, nil
}

func (m *mockNoteRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	n, exists := m.notes[id]
	if !exists {
		return domain.ErrNoteNotFound
	}
	m.updates = append(m.updates, fields)
	if title, ok := fields["title"].(string); ok {
		n.Title = title
	}
	m.notes[id] = n
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	if _, exists := m.notes[id]; !exists {
		return domain.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

type mockFlagRepo struct {
	set    bool
	setErr error
	sets   int
}

func (m *mockFlagRepo) IsSet(ctx context.Context) (bool, error) { return m.set, nil }

func (m *mockFlagRepo) Set(ctx context.Context) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.set = true
	return nil
}

func (m *mockFlagRepo) Key() string { return "hasLoadedNotes" }
