package storage

import (
	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/pkg/bsor"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StoreReplay persists a decoded replay and returns its assigned ID.
	StoreReplay(r *bsor.Replay, meta model.ReplayMeta) (uint, error)
}

// Deduper is implemented by backends that can find an already stored
// replay by file hash.
type Deduper interface {
	FindBySHA256(sha string) (id uint, found bool, err error)
}

// Exporter is implemented by backends that write each replay to a file.
type Exporter interface {
	LastExportPath() string
}

// Loader is implemented by backends that can read a stored replay back.
type Loader interface {
	LoadReplay(id uint) (*bsor.Replay, model.ReplayMeta, error)
}

// Counter is implemented by backends that can report how many replays
// they hold.
type Counter interface {
	Count() (int64, error)
}

// Dumper is implemented by backends that can snapshot their database to a
// file.
type Dumper interface {
	Dump(path string) error
}
