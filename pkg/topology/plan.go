package topology

// DefaultMaxPaths bounds shortest path enumeration. Only the first two paths
// are ever used, the bound exists to keep dense meshes cheap.
const DefaultMaxPaths = 16

// Planner computes hop-count shortest paths over a Graph.
type Planner struct {
	// MaxPaths caps how many equal-cost paths are enumerated; <= 0 means all.
	MaxPaths int
}

// ComputePrimaryBackup returns the first shortest path from src to dst as the
// primary and every other shortest path as backup candidates. Disconnected
// endpoints yield (nil, nil); src == dst yields a single-switch primary.
func (p Planner) ComputePrimaryBackup(g Graph, src, dst string) (primary []string, backups [][]string) {
	paths := p.ShortestPaths(g, src, dst)
	if len(paths) == 0 {
		return nil, nil
	}
	if len(paths) > 1 {
		backups = paths[1:]
	}
	return paths[0], backups
}

// ShortestPaths enumerates all minimum-hop paths from src to dst.
//
// Neighbors are explored in the order Graph returns them, predecessors are
// recorded in BFS discovery order, and paths are walked back from dst through
// the predecessor lists. The same graph always yields the same order.
func (p Planner) ShortestPaths(g Graph, src, dst string) [][]string {
	if !g.HasNode(src) || !g.HasNode(dst) {
		return nil
	}
	if src == dst {
		return [][]string{{src}}
	}

	dist := map[string]int{src: 0}
	preds := make(map[string][]string)
	queue := []string{src}
	for i := 0; i < len(queue); i++ {
		u := queue[i]
		if d, ok := dist[dst]; ok && dist[u] >= d {
			break
		}
		for _, v := range g.Neighbors(u) {
			dv, seen := dist[v]
			switch {
			case !seen:
				dist[v] = dist[u] + 1
				preds[v] = append(preds[v], u)
				queue = append(queue, v)
			case dv == dist[u]+1:
				preds[v] = append(preds[v], u)
			}
		}
	}
	hops, ok := dist[dst]
	if !ok {
		return nil
	}

	var out [][]string
	rev := make([]string, 0, hops+1)
	var walk func(n string) bool
	walk = func(n string) bool {
		rev = append(rev, n)
		defer func() { rev = rev[:len(rev)-1] }()
		if n == src {
			path := make([]string, len(rev))
			for i := range rev {
				path[i] = rev[len(rev)-1-i]
			}
			out = append(out, path)
			return p.MaxPaths > 0 && len(out) >= p.MaxPaths
		}
		for _, pr := range preds[n] {
			if walk(pr) {
				return true
			}
		}
		return false
	}
	walk(dst)
	return out
}
