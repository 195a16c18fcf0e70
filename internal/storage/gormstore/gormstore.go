// Package gormstore implements storage.Backend on a GORM database. The same
// code serves SQLite and Postgres; the dialect is chosen by the database
// manager that is passed in.
package gormstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/bsor/internal/database"
	"github.com/OCAP2/bsor/internal/model"
	"github.com/OCAP2/bsor/internal/model/convert"
	"github.com/OCAP2/bsor/pkg/bsor"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// batchSize keeps a frame batch under SQLite's bound-parameter limit.
const batchSize = 500

// Backend writes replays as one Replay row plus per-kind child rows.
type Backend struct {
	mgr *database.Manager
	mu  sync.Mutex
}

// New wraps an open database manager.
func New(mgr *database.Manager) *Backend {
	return &Backend{mgr: mgr}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	return b.mgr.Setup()
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.mgr.Close()
}

// StoreReplay inserts the replay and all its events in one transaction.
func (b *Backend) StoreReplay(r *bsor.Replay, meta model.ReplayMeta) (uint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	row, err := convert.ReplayToModel(r, meta.Source)
	if err != nil {
		return 0, fmt.Errorf("failed to convert replay: %w", err)
	}
	row.SHA256 = meta.SHA256

	frames, notes, walls, heights, pauses := row.Frames, row.Notes, row.Walls, row.Heights, row.Pauses
	row.Frames, row.Notes, row.Walls, row.Heights, row.Pauses = nil, nil, nil, nil, nil

	err = b.mgr.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert replay: %w", err)
		}

		for i := range frames {
			frames[i].ReplayID = row.ID
		}
		for i := range notes {
			notes[i].ReplayID = row.ID
		}
		for i := range walls {
			walls[i].ReplayID = row.ID
		}
		for i := range heights {
			heights[i].ReplayID = row.ID
		}
		for i := range pauses {
			pauses[i].ReplayID = row.ID
		}

		if err := insertBatches(tx, "frames", frames); err != nil {
			return err
		}
		if err := insertBatches(tx, "notes", notes); err != nil {
			return err
		}
		if err := insertBatches(tx, "walls", walls); err != nil {
			return err
		}
		if err := insertBatches(tx, "heights", heights); err != nil {
			return err
		}
		return insertBatches(tx, "pauses", pauses)
	})
	if err != nil {
		return 0, err
	}

	b.mgr.Logger.Debug().
		Uint("id", row.ID).
		Int("events", len(r.Events)).
		Dur("duration", time.Since(start)).
		Msg("Stored replay")
	return row.ID, nil
}

func insertBatches[T any](tx *gorm.DB, what string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert %s: %w", what, err)
	}
	return nil
}

// FindBySHA256 looks up a stored replay by the hash of its source file.
func (b *Backend) FindBySHA256(sha string) (uint, bool, error) {
	var row model.Replay
	err := b.mgr.DB.Select("id").Where("sha256 = ?", sha).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up replay: %w", err)
	}
	return row.ID, true, nil
}

// LoadReplay reads a stored replay back with its full timeline.
func (b *Backend) LoadReplay(id uint) (*bsor.Replay, model.ReplayMeta, error) {
	bySeq := func(db *gorm.DB) *gorm.DB { return db.Order("seq") }

	var row model.Replay
	err := b.mgr.DB.
		Preload("Frames", bySeq).
		Preload("Notes", bySeq).
		Preload("Walls", bySeq).
		Preload("Heights", bySeq).
		Preload("Pauses", bySeq).
		First(&row, id).Error
	if err != nil {
		return nil, model.ReplayMeta{}, fmt.Errorf("failed to load replay %d: %w", id, err)
	}

	r, err := convert.ModelToReplay(row)
	if err != nil {
		return nil, model.ReplayMeta{}, err
	}
	return r, model.ReplayMeta{Source: row.Source, SHA256: row.SHA256}, nil
}

// Count returns the number of stored replays.
func (b *Backend) Count() (int64, error) {
	var n int64
	if err := b.mgr.DB.Model(&model.Replay{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count replays: %w", err)
	}
	return n, nil
}

// Dump vacuums the database into a file at path. Only SQLite supports it.
func (b *Backend) Dump(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.mgr.DumpToDisk(path)
}
