package domain

// SyncState tracks the one-time import from the remote notes API.
type SyncState string

const (
	SyncPending SyncState = "pending"
	SyncDone    SyncState = "done"
)

type SyncStatus struct {
	Key   string    `json:"key" yaml:"key"`
	State SyncState `json:"state" yaml:"state"`
	Done  bool      `json:"done" yaml:"done"`
}

// StoreState is the lifecycle of the in-memory note list.
type StoreState string

const (
	StoreUninitialized StoreState = "uninitialized"
	StoreLoading       StoreState = "loading"
	StoreReady         StoreState = "ready"
)
