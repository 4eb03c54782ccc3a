package repository

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kivik/kivik/v4"
	"github.com/redis/go-redis/v9"
)

// SyncFlagRepository persists the "one-time import completed" flag. The flag
// is only ever set; there is no reset.
type SyncFlagRepository interface {
	IsSet(ctx context.Context) (bool, error)
	Set(ctx context.Context) error
	Key() string
}

// CouchSyncFlagRepository keeps the flag as a _local document inside the note
// database, so it never shows up in the collection listing or replicates.
type CouchSyncFlagRepository struct {
	db  *kivik.DB
	key string
}

type syncFlagDoc struct {
	ID        string    `json:"_id"`
	Rev       string    `json:"_rev,omitempty"`
	Done      bool      `json:"done"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCouchSyncFlagRepository(client *kivik.Client, dbName, key string) *CouchSyncFlagRepository {
	return &CouchSyncFlagRepository{
		db:  client.DB(dbName),
		key: key,
	}
}

func (r *CouchSyncFlagRepository) docID() string {
	return "_local/" + r.key
}

func (r *CouchSyncFlagRepository) Key() string {
	return r.key
}

func (r *CouchSyncFlagRepository) IsSet(ctx context.Context) (bool, error) {
	var doc syncFlagDoc
	if err := r.db.Get(ctx, r.docID()).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to read sync flag: %w", err)
	}
	return doc.Done, nil
}

func (r *CouchSyncFlagRepository) Set(ctx context.Context) error {
	doc := syncFlagDoc{
		ID:        r.docID(),
		Done:      true,
		UpdatedAt: time.Now(),
	}

	var existing syncFlagDoc
	if err := r.db.Get(ctx, r.docID()).ScanDoc(&existing); err == nil {
		if existing.Done {
			return nil
		}
		doc.Rev = existing.Rev
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return nil
		}
		return fmt.Errorf("failed to set sync flag: %w", err)
	}

	return nil
}

type RedisSyncFlagRepository struct {
	client *redis.Client
	key    string
}

func NewRedisSyncFlagRepository(client *redis.Client, key string) *RedisSyncFlagRepository {
	return &RedisSyncFlagRepository{
		client: client,
		key:    fmt.Sprintf("notes:sync:%s", key),
	}
}

func (r *RedisSyncFlagRepository) Key() string {
	return r.key
}

func (r *RedisSyncFlagRepository) IsSet(ctx context.Context) (bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read sync flag: %w", err)
	}
	return val == "1", nil
}

func (r *RedisSyncFlagRepository) Set(ctx context.Context) error {
	if err := r.client.Set(ctx, r.key, "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to set sync flag: %w", err)
	}
	return nil
}
