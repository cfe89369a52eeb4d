package controller

import (
	"go.uber.org/zap"

	"sdn-controller/pkg/model"
)

// reconfigure fails over flows after u<->v went away. Caller holds c.mu.
//
// A flow counts as affected when u and v both appear anywhere on its primary
// path, not only when they are adjacent on it. Flows that merely pass through
// both switches are therefore moved to their backup too.
func (c *Controller) reconfigure(u, v string) {
	for _, id := range c.flows.IDs() {
		f, _ := c.flows.Get(id)
		if !contains(f.Path, u) || !contains(f.Path, v) {
			continue
		}
		c.log.Info("link affects flow, re-routing", zap.String("u", u), zap.String("v", v), zap.Int64("flow", id))
		if !f.HasBackup() {
			if err := c.flows.Update(id, func(st *model.Flow) { st.Status = model.FlowBroken }); err != nil {
				c.log.Error("mark flow broken", zap.Int64("flow", id), zap.Error(err))
				continue
			}
			c.emit(model.Event{Kind: model.EventFlowBroken, FlowID: id, Src: f.Src, Dst: f.Dst, Path: f.Path, U: u, V: v})
			continue
		}
		var rerouted model.Flow
		err := c.flows.Update(id, func(st *model.Flow) {
			st.Path = st.Backup
			st.Backup = nil
			st.Failovers++
			rerouted = st.Clone()
		})
		if err != nil {
			c.log.Error("switch flow to backup", zap.Int64("flow", id), zap.Error(err))
			continue
		}
		c.emit(model.Event{Kind: model.EventFlowRerouted, FlowID: id, Src: f.Src, Dst: f.Dst, Path: rerouted.Path, U: u, V: v})
		c.program(rerouted)
	}
}

func contains(path []string, n string) bool {
	for _, p := range path {
		if p == n {
			return true
		}
	}
	return false
}
