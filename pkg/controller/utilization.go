package controller

import (
	"sort"

	"sdn-controller/pkg/model"
)

// UtilizationReport counts flows per directed hop. Every live link appears in
// both directions; hops of stale paths over removed links report capacity 0.
func (c *Controller) UtilizationReport() []model.LinkLoad {
	c.mu.Lock()
	defer c.mu.Unlock()

	used := make(map[[2]string]int)
	for _, l := range c.topo.Links() {
		used[[2]string{l.U, l.V}] = 0
		used[[2]string{l.V, l.U}] = 0
	}
	for _, f := range c.flows.List() {
		for _, h := range f.Hops() {
			used[h]++
		}
	}

	out := make([]model.LinkLoad, 0, len(used))
	for hop, n := range used {
		out = append(out, model.LinkLoad{
			From:     hop[0],
			To:       hop[1],
			Used:     n,
			Capacity: c.topo.Capacity(hop[0], hop[1]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
