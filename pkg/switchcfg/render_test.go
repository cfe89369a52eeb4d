package switchcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sdn-controller/pkg/model"
)

func TestRenderTableSortsAndFilters(t *testing.T) {
	rules := []model.FlowRule{
		{FlowID: 3, Switch: "A", MatchDestination: "D", OutputTowards: "D", Priority: 1},
		{FlowID: 2, Switch: "A", MatchDestination: "C", OutputTowards: "B", Priority: 5},
		{FlowID: 2, Switch: "B", MatchDestination: "C", OutputTowards: "C", Priority: 5},
		{FlowID: 1, Switch: "A", MatchDestination: "D", OutputTowards: "D", Priority: 1},
	}
	got := RenderTable("A", rules)
	assert.Equal(t, "A", got.Switch)
	assert.Equal(t, "switch A\n"+
		" cookie=0x2, priority=5, dl_dst=C actions=output:A-B\n"+
		" cookie=0x1, priority=1, dl_dst=D actions=output:A-D\n"+
		" cookie=0x3, priority=1, dl_dst=D actions=output:A-D\n"+
		"!\n", got.Text)
}

func TestRenderEmptyTable(t *testing.T) {
	assert.Equal(t, "switch Z\n!\n", RenderTable("Z", nil).Text)
}

func TestGroupBySwitch(t *testing.T) {
	g := GroupBySwitch([]model.FlowRule{{Switch: "A"}, {Switch: "B"}, {Switch: "A"}})
	assert.Len(t, g["A"], 2)
	assert.Len(t, g["B"], 1)
}
