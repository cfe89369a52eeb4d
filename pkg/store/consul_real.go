//go:build consul

package store

import (
	"go.uber.org/zap"

	"sdn-controller/pkg/consul"
)

// NewConsulStore creates a Consul-backed journal (requires build tag consul).
func NewConsulStore(addr string, log *zap.Logger) (EventStore, error) {
	s, err := consul.NewStore(addr, log)
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("mirroring events to consul", zap.String("addr", addr))
	}
	return s, nil
}
