package api

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"sdn-controller/pkg/model"
)

const (
	subscriberBuffer = 256
	writeTimeout     = 5 * time.Second
)

// EventHub streams controller events to WebSocket subscribers. Each
// subscriber's writer runs on a bounded worker pool, which caps how many
// subscribers can be attached at once.
type EventHub struct {
	upgrader websocket.Upgrader
	pool     *ants.Pool
	log      *zap.Logger

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn  *websocket.Conn
	kinds map[model.EventKind]bool // nil means all kinds
	send  chan model.Event
	done  chan struct{}
	once  sync.Once
}

func (s *subscriber) wants(k model.EventKind) bool {
	return s.kinds == nil || s.kinds[k]
}

func NewEventHub(maxSubscribers int, log *zap.Logger) (*EventHub, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := ants.NewPool(maxSubscribers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		pool: pool,
		log:  log,
		subs: map[*subscriber]struct{}{},
	}, nil
}

// Publish queues e for every interested subscriber. A subscriber whose
// buffer is full misses the event rather than stalling the controller.
func (h *EventHub) Publish(e model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !s.wants(e.Kind) {
			continue
		}
		select {
		case s.send <- e:
		default:
			h.log.Warn("event subscriber lagging; dropped event", zap.String("remote", s.conn.RemoteAddr().String()), zap.String("kind", string(e.Kind)))
		}
	}
}

// HandleSubscribe upgrades the request; ?kinds=FlowRerouted,FlowBroken
// restricts the stream.
func (h *EventHub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if h.pool.Free() == 0 {
		http.Error(w, "too many subscribers", http.StatusServiceUnavailable)
		return
	}
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	s := &subscriber{
		conn:  c,
		kinds: parseKinds(r.URL.Query().Get("kinds")),
		send:  make(chan model.Event, subscriberBuffer),
		done:  make(chan struct{}),
	}
	if err := h.pool.Submit(func() { h.writeLoop(s) }); err != nil {
		msg := "subscriber pool unavailable"
		if errors.Is(err, ants.ErrPoolOverload) {
			msg = "too many subscribers"
		}
		_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, msg), time.Now().Add(time.Second))
		h.remove(s)
		return
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	h.log.Info("event subscriber connected", zap.String("remote", c.RemoteAddr().String()))
	go h.readLoop(s)
}

func (h *EventHub) writeLoop(s *subscriber) {
	for {
		select {
		case <-s.done:
			return
		case e := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(e); err != nil {
				h.remove(s)
				return
			}
		}
	}
}

// readLoop only exists to notice the peer going away.
func (h *EventHub) readLoop(s *subscriber) {
	defer h.remove(s)
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *EventHub) remove(s *subscriber) {
	s.once.Do(func() {
		h.mu.Lock()
		delete(h.subs, s)
		h.mu.Unlock()
		close(s.done)
		_ = s.conn.Close()
		h.log.Info("event subscriber disconnected", zap.String("remote", s.conn.RemoteAddr().String()))
	})
}

// Subscribers returns how many streams are attached.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects everyone and releases the pool.
func (h *EventHub) Close() {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()
	for _, s := range subs {
		h.remove(s)
	}
	h.pool.Release()
}

func parseKinds(raw string) map[model.EventKind]bool {
	if raw == "" {
		return nil
	}
	out := map[model.EventKind]bool{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out[model.EventKind(k)] = true
		}
	}
	return out
}
