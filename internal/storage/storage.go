// Package storage selects and opens the configured repository backend.
package storage

import (
	"fmt"
	"log"

	"NetSentra/internal/config"
	"NetSentra/internal/model"
	"NetSentra/internal/storage/clickhouse"
	"NetSentra/internal/storage/memory"
	"NetSentra/internal/storage/sqlite"
)

// Open creates the store named by cfg.Storage.Backend. An unknown backend
// name is a configuration error.
func Open(cfg *config.Config) (model.Store, error) {
	backend := cfg.Storage.Backend
	log.Printf("Opening storage backend: '%s'", backend)

	switch backend {
	case "", "memory":
		return memory.NewStore(), nil
	case "sqlite":
		return sqlite.NewStore(cfg.Storage.SQLite.Path)
	case "clickhouse":
		return clickhouse.NewStore(cfg.Storage.ClickHouse)
	default:
		return nil, fmt.Errorf("unknown storage backend: '%s'", backend)
	}
}
