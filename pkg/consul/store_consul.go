//go:build consul

package consul

import (
	"encoding/json"
	"fmt"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"

	"sdn-controller/pkg/model"
)

// Store mirrors the event journal into Consul KV so other tooling can watch
// control plane changes.
type Store struct {
	cli *consulapi.Client
	log *zap.Logger
}

const eventPrefix = "sdn/events/"

func NewStore(addr string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &Store{cli: cli, log: log}, nil
}

// eventKey sorts lexically in append order.
func eventKey(e model.Event) string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("%s%020d-%s", eventPrefix, ts.UnixNano(), e.ID)
}

func (s *Store) AppendEvent(e model.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.cli.KV().Put(&consulapi.KVPair{Key: eventKey(e), Value: b}, nil)
	return err
}

func (s *Store) list() ([]model.Event, error) {
	pairs, _, err := s.cli.KV().List(eventPrefix, nil)
	if err != nil {
		return nil, err
	}
	return decodeEvents(pairs, s.log), nil
}

// decodeEvents skips entries that are not events, logging each one.
func decodeEvents(pairs consulapi.KVPairs, log *zap.Logger) []model.Event {
	var out []model.Event
	for _, p := range pairs {
		var e model.Event
		if err := json.Unmarshal(p.Value, &e); err != nil {
			log.Warn("skip undecodable consul event", zap.String("key", p.Key), zap.Error(err))
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *Store) ListEvents(limit int) ([]model.Event, error) {
	out, err := s.list()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) FlowHistory(flowID int64, limit int) ([]model.Event, error) {
	all, err := s.list()
	if err != nil {
		return nil, err
	}
	var out []model.Event
	for _, e := range all {
		if e.FlowID == flowID {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Ping checks that the agent answers.
func (s *Store) Ping() error {
	_, err := s.cli.Status().Leader()
	return err
}

func (s *Store) Close() error { return nil }
