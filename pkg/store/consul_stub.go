//go:build !consul

package store

import (
	"go.uber.org/zap"
)

// NewConsulStore returns a memory journal when the consul build tag is not enabled.
func NewConsulStore(addr string, log *zap.Logger) (EventStore, error) {
	if log != nil {
		log.Warn("consul journal requested but consul build tag not enabled; using memory journal", zap.String("addr", addr))
	}
	return NewMemory(), nil
}
