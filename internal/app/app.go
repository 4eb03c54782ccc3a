package app

import (
	"context"
	"fmt"
	"strings"

	"notes-sync-server/internal/config"
	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/metrics"
	"notes-sync-server/internal/repository"
	"notes-sync-server/internal/service"
	"notes-sync-server/internal/webclient"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds the wired services shared by the server and notesctl.
type App struct {
	Store     *service.NoteStore
	Bootstrap *service.BootstrapService

	couch  *kivik.Client
	redis  *redis.Client
	logger logrus.FieldLogger
}

// New connects to CouchDB (creating the notes database when missing),
// picks the sync flag backend and builds the service graph. m may be nil.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger, m *metrics.Metrics) (*App, error) {
	client, err := kivik.New("couch", cfg.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	exists, err := client.DBExists(ctx, cfg.Database.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}
	if !exists {
		if err := client.CreateDB(ctx, cfg.Database.Name); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
		logger.WithField("database", cfg.Database.Name).Info("created database")
	}

	a := &App{couch: client, logger: logger}

	var flag repository.SyncFlagRepository
	switch cfg.SyncFlag.Backend {
	case config.FlagBackendRedis:
		opts, err := redis.ParseURL(cfg.Redis.Address())
		if err != nil {
			return nil, fmt.Errorf("invalid redis address: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		flag = repository.NewRedisSyncFlagRepository(a.redis, cfg.SyncFlag.Key)
	default:
		flag = repository.NewCouchSyncFlagRepository(client, cfg.Database.Name, cfg.SyncFlag.Key)
	}

	noteRepo := repository.NewNoteRepository(client, cfg.Database.Name)

	httpClient := webclient.New(logger,
		webclient.WithTimeout(cfg.RemoteAPI.Timeout),
		webclient.WithMetrics(m),
	)
	importer := service.NewImportService(httpClient, cfg.RemoteAPI.NotesURL, logger)

	a.Store = service.NewNoteStore(noteRepo, logger, m)
	a.Bootstrap = service.NewBootstrapService(importer, a.Store, flag, logger)

	return a, nil
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if a.couch != nil {
		if err := a.couch.Close(); err != nil {
			a.logger.WithError(err).Warn("failed to close couchdb client")
		}
	}
}

func (a *App) Import(ctx context.Context) (*domain.ImportReport, error) {
	return a.Bootstrap.EnsureImported(ctx)
}

func (a *App) Status(ctx context.Context) (*domain.SyncStatus, error) {
	return a.Bootstrap.Status(ctx)
}

func (a *App) Notes(ctx context.Context) ([]domain.Note, error) {
	return a.Store.FetchAll(ctx)
}

// Rename resolves identifier (document id or nid) and writes the new title.
func (a *App) Rename(ctx context.Context, identifier, title string) (domain.Note, error) {
	note, err := a.lookup(ctx, identifier)
	if err != nil {
		return domain.Note{}, err
	}
	if err := a.Store.UpdateTitle(ctx, note, title); err != nil {
		return domain.Note{}, err
	}
	updated, ok := a.Store.Find(note.Identifier())
	if !ok {
		updated = note
		updated.Title = strings.TrimSpace(title)
	}
	return updated, nil
}

func (a *App) Delete(ctx context.Context, identifier string) error {
	note, err := a.lookup(ctx, identifier)
	if err != nil {
		return err
	}
	return a.Store.Delete(ctx, note.ID)
}

// lookup reads identifier as a document id first, then as a nid.
func (a *App) lookup(ctx context.Context, identifier string) (domain.Note, error) {
	note, err := a.Store.Get(ctx, identifier)
	if err == nil {
		return note, nil
	}
	if !service.IsNotFound(err) {
		return domain.Note{}, err
	}

	notes, err := a.Store.FetchAll(ctx)
	if err != nil {
		return domain.Note{}, err
	}
	for _, n := range notes {
		if n.Identifier() == identifier || fmt.Sprint(n.NID) == identifier {
			return n, nil
		}
	}
	return domain.Note{}, domain.ErrNoteNotFound
}
