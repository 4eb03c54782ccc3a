package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/logger"
	"notes-sync-server/internal/service"
	"notes-sync-server/internal/webclient"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	notes  map[string]domain.Note
	nextID int
}

func (m *memRepo) List(ctx context.Context) ([]domain.Note, error) {
	out := []domain.Note{}
	for _, n := range m.notes {
		out = append(out, n)
	}
	return out, nil
}

func (m *memRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	if n, ok := m.notes[id]; ok {
		return &n, nil
	}
	return nil, domain.ErrNoteNotFound
}

func (m *memRepo) Create(ctx context.Context, note domain.Note) (string, error) {
	m.nextID++
	note.ID = fmt.Sprintf("doc-%d", m.nextID)
	m.notes[note.ID] = note
	return note.ID, nil
}

func (m *memRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	n, ok := m.notes[id]
	if !ok {
		return domain.ErrNoteNotFound
	}
	n.Title = fields["title"].(string)
	m.notes[id] = n
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

type memFlag struct{ set bool }

func (f *memFlag) IsSet(ctx context.Context) (bool, error) { return f.set, nil }
func (f *memFlag) Set(ctx context.Context) error          { f.set = true; return nil }
func (f *memFlag) Key() string                            { return "hasLoadedNotes" }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func setupRouter(t *testing.T, apiBody string) (*mux.Router, *memRepo) {
	t.Helper()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, apiBody)
	}))
	t.Cleanup(api.Close)

	log := logger.Discard()
	repo := &memRepo{notes: map[string]domain.Note{
		"doc-a": {ID: "doc-a", NID: 1, Title: "A", Image: "http://x/a.png"},
	}}
	store := service.NewNoteStore(repo, log, nil)
	importer := service.NewImportService(webclient.New(log), api.URL, log)
	boot := service.NewBootstrapService(importer, store, &memFlag{}, log)

	router := NewRouter(RouterConfig{
		Notes:          NewNoteHandler(store),
		Import:         NewImportHandler(boot),
		Health:         NewHealthHandler(store),
		AllowedOrigins: "*",
		AllowedMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowedHeaders: "Content-Type",
		Logger:         log,
	})
	return router, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestNoteHandler_List(t *testing.T) {
	router, _ := setupRouter(t, `[]`)

	rec, env := do(t, router, http.MethodGet, "/api/v1/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var notes []domain.Note
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "doc-a", notes[0].ID)
}

func TestNoteHandler_UpdateTitle(t *testing.T) {
	router, repo := setupRouter(t, `[]`)
	do(t, router, http.MethodPost, "/api/v1/notes/refresh", "")

	rec, env := do(t, router, http.MethodPut, "/api/v1/notes/doc-a", `{"title":" renamed "}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	var note domain.Note
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "renamed", note.Title)
	assert.Equal(t, "renamed", repo.notes["doc-a"].Title)
	assert.Equal(t, 1, repo.notes["doc-a"].NID)
}

func TestNoteHandler_UpdateTitleRejected(t *testing.T) {
	router, repo := setupRouter(t, `[]`)
	do(t, router, http.MethodPost, "/api/v1/notes/refresh", "")

	rec, _ := do(t, router, http.MethodPut, "/api/v1/notes/doc-a", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/api/v1/notes/doc-a", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPut, "/api/v1/notes/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, "A", repo.notes["doc-a"].Title)
}

func TestNoteHandler_UpdateTitleTooLong(t *testing.T) {
	router, repo := setupRouter(t, `[]`)

	body, err := json.Marshal(domain.UpdateTitleRequest{Title: strings.Repeat("é", domain.MaxTitleLength+1)})
	require.NoError(t, err)

	rec, env := do(t, router, http.MethodPut, "/api/v1/notes/doc-a", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.ErrTitleTooLong.Error(), env.Error)
	assert.Contains(t, env.Error, "500")

	body, err = json.Marshal(domain.UpdateTitleRequest{Title: strings.Repeat("é", domain.MaxTitleLength)})
	require.NoError(t, err)
	rec, env = do(t, router, http.MethodPut, "/api/v1/notes/doc-a", string(body))
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	assert.Equal(t, strings.Repeat("é", domain.MaxTitleLength), repo.notes["doc-a"].Title)
}

func TestNoteHandler_ReadsThroughBeforeFirstLoad(t *testing.T) {
	router, repo := setupRouter(t, `[]`)

	rec, env := do(t, router, http.MethodGet, "/api/v1/notes/doc-a", "")
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	var note domain.Note
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "A", note.Title)
	assert.Equal(t, 1, note.NID)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/notes/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, router, http.MethodPut, "/api/v1/notes/doc-a", `{"title":"fresh"}`)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "fresh", note.Title)
	assert.Equal(t, "fresh", repo.notes["doc-a"].Title)
}

func TestNoteHandler_Delete(t *testing.T) {
	router, repo := setupRouter(t, `[]`)
	do(t, router, http.MethodPost, "/api/v1/notes/refresh", "")

	rec, env := do(t, router, http.MethodDelete, "/api/v1/notes/doc-a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note deleted successfully", env.Message)
	assert.Empty(t, repo.notes)

	rec, _ = do(t, router, http.MethodDelete, "/api/v1/notes/doc-a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/notes/doc-a", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImportHandler(t *testing.T) {
	router, repo := setupRouter(t, `[{"nid":2,"title":"B","image":"http://x/b.png"}]`)

	rec, env := do(t, router, http.MethodGet, "/api/v1/import/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status domain.SyncStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Done)

	rec, env = do(t, router, http.MethodPost, "/api/v1/import", "")
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	var report domain.ImportReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 1, report.Created)
	assert.Len(t, repo.notes, 2)

	rec, env = do(t, router, http.MethodPost, "/api/v1/import", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notes already imported", env.Message)
	assert.Len(t, repo.notes, 2)

	_, env = do(t, router, http.MethodGet, "/api/v1/import/status", "")
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.True(t, status.Done)
	assert.Equal(t, domain.SyncDone, status.State)
}

func TestImportHandler_UpstreamFailure(t *testing.T) {
	router, _ := setupRouter(t, `garbage`)

	rec, env := do(t, router, http.MethodPost, "/api/v1/import", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, env.Error, string(webclient.KindDecode))
}

func TestHealthHandler(t *testing.T) {
	router, _ := setupRouter(t, `[]`)

	rec, env := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}
