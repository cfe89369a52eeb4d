package store

import (
	"fmt"

	"go.uber.org/zap"
)

// Open builds the journal backend named by kind: memory, sqlite or consul.
func Open(kind, sqlitePath, consulAddr string, log *zap.Logger) (EventStore, error) {
	switch kind {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	case "consul":
		return NewConsulStore(consulAddr, log)
	default:
		return nil, fmt.Errorf("unsupported journal backend: %s", kind)
	}
}
