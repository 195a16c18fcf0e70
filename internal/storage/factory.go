package storage

import (
	"fmt"

	"github.com/OCAP2/bsor/internal/config"
	"github.com/OCAP2/bsor/internal/database"
	"github.com/OCAP2/bsor/internal/storage/gormstore"
	"github.com/OCAP2/bsor/internal/storage/memory"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration. Database
// connections are opened here; Init still has to be called.
func NewBackend(cfg config.StorageConfig, dbCfg config.DBConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		m := database.NewManager(log)
		if err := m.OpenPostgres(dbCfg); err != nil {
			return nil, err
		}
		return gormstore.New(m), nil
	case "sqlite":
		m := database.NewManager(log)
		if err := m.OpenSqlite(cfg.SQLite.Path); err != nil {
			return nil, err
		}
		return gormstore.New(m), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
