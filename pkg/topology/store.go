package topology

import (
	"errors"
	"fmt"
	"sort"

	"sdn-controller/pkg/model"
)

// DefaultCapacity is used when a link is added without an explicit capacity.
const DefaultCapacity = 10

var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrLinkNotFound    = errors.New("link not found")
	ErrSelfLoop        = errors.New("link endpoints must differ")
	ErrInvalidCapacity = errors.New("capacity must not be negative")
)

// Graph is the read view the planner needs.
type Graph interface {
	HasNode(id string) bool
	Neighbors(id string) []string
}

// Store owns the switches, the undirected links between them and the
// per-direction link capacities. It is not safe for concurrent use; the
// controller serializes access.
type Store struct {
	adj      map[string]map[string]struct{}
	capacity map[[2]string]int
}

func NewStore() *Store {
	return &Store{
		adj:      make(map[string]map[string]struct{}),
		capacity: make(map[[2]string]int),
	}
}

// AddNode registers a switch. Adding a known switch is a no-op; the return
// value reports whether the switch was new.
func (s *Store) AddNode(id string) bool {
	if _, ok := s.adj[id]; ok {
		return false
	}
	s.adj[id] = make(map[string]struct{})
	return true
}

// RemoveNode drops a switch and every link touching it. Flows routed through
// the switch are left alone.
func (s *Store) RemoveNode(id string) error {
	peers, ok := s.adj[id]
	if !ok {
		return fmt.Errorf("remove node %s: %w", id, ErrNodeNotFound)
	}
	for p := range peers {
		delete(s.adj[p], id)
		delete(s.capacity, [2]string{id, p})
		delete(s.capacity, [2]string{p, id})
	}
	delete(s.adj, id)
	return nil
}

// AddLink creates or overwrites the link u<->v. Unknown endpoints are created
// and returned in added so callers can report them.
func (s *Store) AddLink(u, v string, capacity int) (added []string, err error) {
	if u == v {
		return nil, fmt.Errorf("add link %s<->%s: %w", u, v, ErrSelfLoop)
	}
	if capacity < 0 {
		return nil, fmt.Errorf("add link %s<->%s: %w", u, v, ErrInvalidCapacity)
	}
	for _, n := range []string{u, v} {
		if s.AddNode(n) {
			added = append(added, n)
		}
	}
	s.adj[u][v] = struct{}{}
	s.adj[v][u] = struct{}{}
	s.capacity[[2]string{u, v}] = capacity
	s.capacity[[2]string{v, u}] = capacity
	return added, nil
}

// RemoveLink deletes u<->v together with both capacity entries.
func (s *Store) RemoveLink(u, v string) error {
	if !s.HasLink(u, v) {
		return fmt.Errorf("remove link %s<->%s: %w", u, v, ErrLinkNotFound)
	}
	delete(s.adj[u], v)
	delete(s.adj[v], u)
	delete(s.capacity, [2]string{u, v})
	delete(s.capacity, [2]string{v, u})
	return nil
}

func (s *Store) HasNode(id string) bool {
	_, ok := s.adj[id]
	return ok
}

func (s *Store) HasLink(u, v string) bool {
	_, ok := s.adj[u][v]
	return ok
}

// Capacity returns the capacity of the hop u->v, or 0 if no such link exists.
func (s *Store) Capacity(u, v string) int {
	return s.capacity[[2]string{u, v}]
}

// Neighbors returns the switches adjacent to id in lexical order.
func (s *Store) Neighbors(id string) []string {
	peers := s.adj[id]
	out := make([]string, 0, len(peers))
	for p := range peers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Nodes returns every switch in lexical order.
func (s *Store) Nodes() []string {
	out := make([]string, 0, len(s.adj))
	for n := range s.adj {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Links returns each undirected link once, with U < V, sorted.
func (s *Store) Links() []model.Link {
	var out []model.Link
	for _, u := range s.Nodes() {
		for _, v := range s.Neighbors(u) {
			if u < v {
				out = append(out, model.Link{U: u, V: v, Weight: 1, Capacity: s.Capacity(u, v)})
			}
		}
	}
	return out
}

// View copies the current graph for read-only consumers.
func (s *Store) View() model.TopologyView {
	links := s.Links()
	if links == nil {
		links = []model.Link{}
	}
	return model.TopologyView{Nodes: s.Nodes(), Links: links}
}
