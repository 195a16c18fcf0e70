// Package memory keeps replays in memory and exports each one as JSON.
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/OCAP2/bsor/internal/config"
	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/pkg/bsor"
)

// ErrNotFound is returned for an ID this backend never assigned.
var ErrNotFound = errors.New("replay not found")

// ReplayRecord is a stored replay with its metadata.
type ReplayRecord struct {
	ID     uint
	Replay *bsor.Replay
	Meta   model.ReplayMeta
}

// Backend stores replays in memory and exports each to a JSON file.
type Backend struct {
	cfg config.MemoryConfig

	replays        map[uint]*ReplayRecord
	bySHA          map[string]uint
	idCounter      uint
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		replays: make(map[uint]*ReplayRecord),
		bySHA:   make(map[string]uint),
	}
}

func (b *Backend) Init() error {
	return nil
}

func (b *Backend) Close() error {
	return nil
}

// StoreReplay keeps the replay and, when an output directory is set, exports it.
func (b *Backend) StoreReplay(r *bsor.Replay, meta model.ReplayMeta) (uint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	rec := &ReplayRecord{ID: b.idCounter, Replay: r, Meta: meta}

	if b.cfg.OutputDir != "" {
		path, err := b.exportJSON(rec)
		if err != nil {
			b.idCounter--
			return 0, err
		}
		b.lastExportPath = path
	}

	b.replays[rec.ID] = rec
	if meta.SHA256 != "" {
		b.bySHA[meta.SHA256] = rec.ID
	}
	return rec.ID, nil
}

// FindBySHA256 returns the ID of a replay stored with the given hash.
func (b *Backend) FindBySHA256(sha string) (uint, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	id, ok := b.bySHA[sha]
	return id, ok, nil
}

// LoadReplay returns a replay stored by this process.
func (b *Backend) LoadReplay(id uint) (*bsor.Replay, model.ReplayMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.replays[id]
	if !ok {
		return nil, model.ReplayMeta{}, fmt.Errorf("failed to load replay %d: %w", id, ErrNotFound)
	}
	return rec.Replay, rec.Meta, nil
}

// Count returns the number of stored replays.
func (b *Backend) Count() (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return int64(len(b.replays)), nil
}

// LastExportPath returns the file written by the most recent StoreReplay.
func (b *Backend) LastExportPath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.lastExportPath
}

// shortHash names an export when the source hash is unknown.
func shortHash(r *bsor.Replay) string {
	sum := sha256.Sum256([]byte(r.Info.PlayerID + "|" + r.Info.Hash + "|" + r.Info.Difficulty))
	return hex.EncodeToString(sum[:4])
}
