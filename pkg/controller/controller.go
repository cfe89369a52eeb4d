// Package controller is the SDN control plane: it owns the topology and the
// flow table, installs flows on shortest paths and fails them over when links
// go away.
package controller

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sdn-controller/pkg/events"
	"sdn-controller/pkg/flow"
	"sdn-controller/pkg/model"
	"sdn-controller/pkg/topology"
)

// Controller serializes every operation behind one mutex, reads included, so
// no caller observes a half-applied mutation and a flow's path cannot be
// invalidated between computation and storage.
type Controller struct {
	mu      sync.Mutex
	topo    *topology.Store
	flows   *flow.Table
	planner topology.Planner
	sink    events.Sink
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Controller)

// WithSink sets where events go. Defaults to events.Discard.
func WithSink(s events.Sink) Option {
	return func(c *Controller) { c.sink = s }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMaxPaths bounds equal-cost path enumeration per install.
func WithMaxPaths(n int) Option {
	return func(c *Controller) { c.planner.MaxPaths = n }
}

func New(opts ...Option) *Controller {
	c := &Controller{
		topo:    topology.NewStore(),
		flows:   flow.NewTable(),
		planner: topology.Planner{MaxPaths: topology.DefaultMaxPaths},
		sink:    events.Discard,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) emit(e model.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = c.now()
	}
	c.sink.Publish(events.Stamp(e))
}

// AddNode registers a switch. Known switches are ignored.
func (c *Controller) AddNode(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.topo.AddNode(id) {
		c.emit(model.Event{Kind: model.EventNodeAdded, Node: id})
	}
}

// RemoveNode drops a switch and its links. Flows through the switch are not
// touched and keep their now-invalid paths.
func (c *Controller) RemoveNode(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.topo.RemoveNode(id); err != nil {
		return err
	}
	c.emit(model.Event{Kind: model.EventNodeRemoved, Node: id})
	return nil
}

// AddLink creates or replaces u<->v with the given capacity in both
// directions. Unknown endpoints are registered first.
func (c *Controller) AddLink(u, v string, capacity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	replaced := c.topo.HasLink(u, v)
	added, err := c.topo.AddLink(u, v, capacity)
	if err != nil {
		return err
	}
	for _, n := range added {
		c.emit(model.Event{Kind: model.EventNodeAdded, Node: n})
	}
	if replaced {
		c.log.Debug("link capacity replaced", zap.String("u", u), zap.String("v", v), zap.Int("capacity", capacity))
	}
	c.emit(model.Event{Kind: model.EventLinkAdded, U: u, V: v, Capacity: capacity})
	return nil
}

// RemoveLink deletes u<->v and fails over every flow it affects.
func (c *Controller) RemoveLink(u, v string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.topo.RemoveLink(u, v); err != nil {
		return err
	}
	c.emit(model.Event{Kind: model.EventLinkRemoved, U: u, V: v})
	c.reconfigure(u, v)
	return nil
}

// InstallFlow routes a new flow from src to dst and programs every switch on
// its primary path. An id is consumed as soon as both endpoints are known,
// so a flow that finds no path still advances the id sequence.
func (c *Controller) InstallFlow(src, dst string, priority int, critical bool) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range []string{src, dst} {
		if !c.topo.HasNode(n) {
			err := fmt.Errorf("install flow %s->%s: %s: %w", src, dst, n, ErrNodeNotFound)
			c.emit(model.Event{Kind: model.EventFlowInstallFailed, Src: src, Dst: dst, Reason: err.Error()})
			return 0, err
		}
	}
	id := c.flows.Allocate()
	primary, backups := c.planner.ComputePrimaryBackup(c.topo, src, dst)
	if len(primary) == 0 {
		err := fmt.Errorf("install flow %s->%s: %w", src, dst, ErrNoPathAvailable)
		c.emit(model.Event{Kind: model.EventFlowInstallFailed, Src: src, Dst: dst, Reason: err.Error()})
		return 0, err
	}
	f := model.Flow{
		ID:          id,
		Src:         src,
		Dst:         dst,
		Priority:    priority,
		Critical:    critical,
		Path:        primary,
		Status:      model.FlowActive,
		InstalledAt: c.now(),
	}
	if len(backups) > 0 {
		f.Backup = backups[0]
	}
	c.flows.Put(f)
	c.emit(model.Event{Kind: model.EventFlowInstalled, FlowID: id, Src: src, Dst: dst, Path: f.Path, Backup: f.Backup})
	c.program(f)
	return id, nil
}

// program emits one switch programming event per hop of the primary path.
func (c *Controller) program(f model.Flow) {
	for _, r := range flow.Rules(f) {
		c.emit(model.Event{Kind: model.EventFlowProgrammed, FlowID: f.ID, Dst: f.Dst, Rule: &r})
	}
}

// GetFlow returns a copy of one flow.
func (c *Controller) GetFlow(id int64) (model.Flow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flows.Get(id)
	if !ok {
		return model.Flow{}, fmt.Errorf("flow %d: %w", id, ErrFlowNotFound)
	}
	return f, nil
}

// RemoveFlow deletes a flow record. Its id is not reused.
func (c *Controller) RemoveFlow(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.flows.Delete(id); err != nil {
		return err
	}
	c.emit(model.Event{Kind: model.EventFlowRemoved, FlowID: id})
	return nil
}

// ListFlows returns every stored flow, broken ones included, ordered by id.
func (c *Controller) ListFlows() []model.Flow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flows.List()
}

// Topology returns a copy of the current graph for visualization.
func (c *Controller) Topology() model.TopologyView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topo.View()
}

// SwitchRules returns the forwarding entries currently programmed on sw.
// Broken flows have no valid forwarding and contribute nothing.
func (c *Controller) SwitchRules(sw string) ([]model.FlowRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.topo.HasNode(sw) {
		return nil, fmt.Errorf("switch %s: %w", sw, ErrNodeNotFound)
	}
	out := []model.FlowRule{}
	for _, r := range c.rules() {
		if r.Switch == sw {
			out = append(out, r)
		}
	}
	return out, nil
}

// Rules returns every programmed forwarding entry across all switches, in
// flow id order.
func (c *Controller) Rules() []model.FlowRule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rules()
}

func (c *Controller) rules() []model.FlowRule {
	out := []model.FlowRule{}
	for _, f := range c.flows.List() {
		if f.Status == model.FlowBroken {
			continue
		}
		out = append(out, flow.Rules(f)...)
	}
	return out
}

// Stats is a point-in-time size summary.
type Stats struct {
	Nodes       int `json:"nodes"`
	Links       int `json:"links"`
	Flows       int `json:"flows"`
	BrokenFlows int `json:"brokenFlows"`
}

func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Nodes: len(c.topo.Nodes()),
		Links: len(c.topo.Links()),
		Flows: c.flows.Len(),
	}
	for _, f := range c.flows.List() {
		if f.Status == model.FlowBroken {
			s.BrokenFlows++
		}
	}
	return s
}
