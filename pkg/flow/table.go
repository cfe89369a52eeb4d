package flow

import (
	"errors"
	"fmt"
	"sort"

	"sdn-controller/pkg/model"
)

var ErrFlowNotFound = errors.New("flow not found")

// Table holds installed flows and the id sequence. Ids start at 1 and are
// never handed out twice, even when the caller fails to store a flow for an
// allocated id. Not safe for concurrent use.
type Table struct {
	flows  map[int64]*model.Flow
	nextID int64
}

func NewTable() *Table {
	return &Table{flows: make(map[int64]*model.Flow), nextID: 1}
}

// Allocate consumes and returns the next flow id.
func (t *Table) Allocate() int64 {
	id := t.nextID
	t.nextID++
	return id
}

// Put stores f under f.ID, replacing any previous entry.
func (t *Table) Put(f model.Flow) {
	c := f.Clone()
	t.flows[f.ID] = &c
}

func (t *Table) Get(id int64) (model.Flow, bool) {
	f, ok := t.flows[id]
	if !ok {
		return model.Flow{}, false
	}
	return f.Clone(), true
}

func (t *Table) Delete(id int64) error {
	if _, ok := t.flows[id]; !ok {
		return fmt.Errorf("flow %d: %w", id, ErrFlowNotFound)
	}
	delete(t.flows, id)
	return nil
}

// Update applies fn to the stored flow in place.
func (t *Table) Update(id int64, fn func(*model.Flow)) error {
	f, ok := t.flows[id]
	if !ok {
		return fmt.Errorf("flow %d: %w", id, ErrFlowNotFound)
	}
	fn(f)
	return nil
}

func (t *Table) Len() int { return len(t.flows) }

// IDs returns the stored flow ids in ascending order.
func (t *Table) IDs() []int64 {
	ids := make([]int64, 0, len(t.flows))
	for id := range t.flows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// List returns copies of all flows ordered by id.
func (t *Table) List() []model.Flow {
	out := make([]model.Flow, 0, len(t.flows))
	for _, id := range t.IDs() {
		out = append(out, t.flows[id].Clone())
	}
	return out
}

// Rules derives the forwarding entries a flow's primary path programs, one
// per hop.
func Rules(f model.Flow) []model.FlowRule {
	hops := f.Hops()
	out := make([]model.FlowRule, 0, len(hops))
	for _, h := range hops {
		out = append(out, model.FlowRule{
			FlowID:           f.ID,
			Switch:           h[0],
			MatchDestination: f.Dst,
			OutputTowards:    h[1],
			Priority:         f.Priority,
		})
	}
	return out
}
