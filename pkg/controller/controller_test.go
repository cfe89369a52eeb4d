package controller

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdn-controller/pkg/events"
	"sdn-controller/pkg/model"
)

// newSquare builds A-B, B-C, C-D, A-D, all capacity 10.
func newSquare(t *testing.T) (*Controller, *events.Buffer) {
	t.Helper()
	buf := &events.Buffer{}
	c := New(WithSink(buf))
	for _, n := range []string{"A", "B", "C", "D"} {
		c.AddNode(n)
	}
	for _, l := range [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"A", "D"}} {
		require.NoError(t, c.AddLink(l[0], l[1], 10))
	}
	buf.Reset()
	return c, buf
}

func TestScenarios(t *testing.T) {
	c, buf := newSquare(t)

	// A: direct edge wins
	id1, err := c.InstallFlow("A", "D", 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id1)
	f1, err := c.GetFlow(id1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, f1.Path)
	assert.False(t, f1.HasBackup())

	// B: without A-B only A-D-C remains
	require.NoError(t, c.RemoveLink("A", "B"))
	id2, err := c.InstallFlow("A", "C", 1, false)
	require.NoError(t, err)
	f2, _ := c.GetFlow(id2)
	assert.Equal(t, []string{"A", "D", "C"}, f2.Path)
	assert.Empty(t, f2.Backup)

	// C: dropping C-D breaks flow 2, which stays stored with its stale path
	buf.Reset()
	require.NoError(t, c.RemoveLink("C", "D"))
	assert.Equal(t, []model.EventKind{model.EventLinkRemoved, model.EventFlowBroken}, buf.Kinds())
	assert.Equal(t, id2, buf.Events[1].FlowID)

	f2, err = c.GetFlow(id2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D", "C"}, f2.Path)
	assert.Equal(t, model.FlowBroken, f2.Status)
	assert.Len(t, c.ListFlows(), 2)

	f1, _ = c.GetFlow(id1)
	assert.Equal(t, model.FlowActive, f1.Status)
}

func TestInstallEmitsOneProgrammingEventPerHop(t *testing.T) {
	c, buf := newSquare(t)
	id, err := c.InstallFlow("A", "C", 3, true)
	require.NoError(t, err)

	require.Equal(t, []model.EventKind{model.EventFlowInstalled, model.EventFlowProgrammed, model.EventFlowProgrammed}, buf.Kinds())
	installed := buf.Events[0]
	assert.Equal(t, []string{"A", "B", "C"}, installed.Path)
	assert.Equal(t, []string{"A", "D", "C"}, installed.Backup)
	assert.Equal(t, model.FlowRule{FlowID: id, Switch: "A", MatchDestination: "C", OutputTowards: "B", Priority: 3}, *buf.Events[1].Rule)
	assert.Equal(t, model.FlowRule{FlowID: id, Switch: "B", MatchDestination: "C", OutputTowards: "C", Priority: 3}, *buf.Events[2].Rule)
	for _, e := range buf.Events {
		assert.NotEmpty(t, e.ID)
	}

	f, _ := c.GetFlow(id)
	assert.True(t, f.Critical)
	assert.Equal(t, 3, f.Priority)
}

func TestInstallUnknownNodeAllocatesNoID(t *testing.T) {
	c, buf := newSquare(t)
	_, err := c.InstallFlow("A", "Z", 1, false)
	require.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, []model.EventKind{model.EventFlowInstallFailed}, buf.Kinds())

	id, err := c.InstallFlow("A", "B", 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestFailedInstallConsumesID(t *testing.T) {
	c, buf := newSquare(t)
	c.AddNode("E")

	id1, err := c.InstallFlow("A", "B", 1, false)
	require.NoError(t, err)
	_, err = c.InstallFlow("A", "E", 1, false)
	require.ErrorIs(t, err, ErrNoPathAvailable)
	assert.Equal(t, model.EventFlowInstallFailed, buf.Events[len(buf.Events)-1].Kind)
	assert.Len(t, c.ListFlows(), 1)

	id3, err := c.InstallFlow("B", "C", 1, false)
	require.NoError(t, err)
	assert.Equal(t, id1+2, id3)
}

func TestIDsStrictlyIncrease(t *testing.T) {
	c, _ := newSquare(t)
	c.AddNode("island")
	var last int64
	pairs := [][2]string{{"A", "C"}, {"A", "island"}, {"B", "D"}, {"C", "C"}, {"island", "D"}, {"D", "B"}}
	for _, p := range pairs {
		id, err := c.InstallFlow(p[0], p[1], 1, false)
		if err != nil {
			continue
		}
		assert.Greater(t, id, last)
		last = id
	}
	assert.Equal(t, int64(6), last)
}

func TestSameEndpointFlow(t *testing.T) {
	c, buf := newSquare(t)
	id, err := c.InstallFlow("B", "B", 1, false)
	require.NoError(t, err)
	f, _ := c.GetFlow(id)
	assert.Equal(t, []string{"B"}, f.Path)
	assert.Equal(t, []model.EventKind{model.EventFlowInstalled}, buf.Kinds())
}

func TestInstalledPathsAreValid(t *testing.T) {
	c, _ := newSquare(t)
	require.NoError(t, c.AddLink("B", "D", 10))
	require.NoError(t, c.AddLink("D", "E", 10))
	for _, src := range []string{"A", "B", "C", "D", "E"} {
		for _, dst := range []string{"A", "B", "C", "D", "E"} {
			_, err := c.InstallFlow(src, dst, 1, false)
			require.NoError(t, err)
		}
	}
	topo := c.Topology()
	linked := map[[2]string]bool{}
	for _, l := range topo.Links {
		linked[[2]string{l.U, l.V}] = true
		linked[[2]string{l.V, l.U}] = true
	}
	for _, f := range c.ListFlows() {
		require.NotEmpty(t, f.Path)
		assert.Equal(t, f.Src, f.Path[0])
		assert.Equal(t, f.Dst, f.Path[len(f.Path)-1])
		for _, h := range f.Hops() {
			assert.True(t, linked[h], "flow %d hop %v", f.ID, h)
		}
	}
}

func TestAddLinkRegistersEndpointsAndOverwrites(t *testing.T) {
	buf := &events.Buffer{}
	c := New(WithSink(buf))
	require.NoError(t, c.AddLink("X", "Y", 4))
	assert.Equal(t, []model.EventKind{model.EventNodeAdded, model.EventNodeAdded, model.EventLinkAdded}, buf.Kinds())

	buf.Reset()
	require.NoError(t, c.AddLink("Y", "X", 6))
	assert.Equal(t, []model.EventKind{model.EventLinkAdded}, buf.Kinds())
	assert.Equal(t, []model.Link{{U: "X", V: "Y", Weight: 1, Capacity: 6}}, c.Topology().Links)

	assert.ErrorIs(t, c.AddLink("X", "X", 1), ErrSelfLoop)
	assert.ErrorIs(t, c.AddLink("X", "Z", -3), ErrInvalidCapacity)
}

func TestAddNodeTwiceEmitsOnce(t *testing.T) {
	buf := &events.Buffer{}
	c := New(WithSink(buf))
	c.AddNode("A")
	c.AddNode("A")
	assert.Equal(t, []model.EventKind{model.EventNodeAdded}, buf.Kinds())
}

func TestRemoveMissing(t *testing.T) {
	c, buf := newSquare(t)
	assert.ErrorIs(t, c.RemoveNode("Z"), ErrNodeNotFound)
	assert.ErrorIs(t, c.RemoveLink("A", "C"), ErrLinkNotFound)
	assert.ErrorIs(t, c.RemoveFlow(42), ErrFlowNotFound)
	_, err := c.GetFlow(42)
	assert.ErrorIs(t, err, ErrFlowNotFound)
	assert.Empty(t, buf.Events)
}

func TestRemoveNodeLeavesFlowsUntouched(t *testing.T) {
	c, buf := newSquare(t)
	id, err := c.InstallFlow("A", "C", 1, false)
	require.NoError(t, err)
	before, _ := c.GetFlow(id)

	buf.Reset()
	require.NoError(t, c.RemoveNode("B"))
	assert.Equal(t, []model.EventKind{model.EventNodeRemoved}, buf.Kinds())

	after, _ := c.GetFlow(id)
	assert.Equal(t, before, after)
}

func TestRemoveFlowKeepsSequence(t *testing.T) {
	c, buf := newSquare(t)
	id, _ := c.InstallFlow("A", "B", 1, false)
	buf.Reset()
	require.NoError(t, c.RemoveFlow(id))
	assert.Equal(t, []model.EventKind{model.EventFlowRemoved}, buf.Kinds())
	assert.Empty(t, c.ListFlows())

	next, err := c.InstallFlow("A", "B", 1, false)
	require.NoError(t, err)
	assert.Equal(t, id+1, next)
}

func TestSwitchRulesSkipBrokenFlows(t *testing.T) {
	c, _ := newSquare(t)
	_, err := c.InstallFlow("A", "D", 1, false)
	require.NoError(t, err)
	_, err = c.InstallFlow("B", "D", 1, false)
	require.NoError(t, err)

	rules, err := c.SwitchRules("A")
	require.NoError(t, err)
	// flow 2 runs B-A-D, so A carries both flows towards D
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.Equal(t, "D", r.OutputTowards)
	}

	require.NoError(t, c.RemoveLink("A", "D"))
	rules, err = c.SwitchRules("A")
	require.NoError(t, err)
	assert.Empty(t, rules)
	rules, err = c.SwitchRules("C")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(2), rules[0].FlowID)

	_, err = c.SwitchRules("nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	st := c.Stats()
	assert.Equal(t, Stats{Nodes: 4, Links: 3, Flows: 2, BrokenFlows: 1}, st)
}

func TestRulesCoverEveryActiveHop(t *testing.T) {
	c, _ := newSquare(t)
	assert.Empty(t, c.Rules())
	_, err := c.InstallFlow("A", "C", 1, false)
	require.NoError(t, err)
	_, err = c.InstallFlow("B", "C", 1, false)
	require.NoError(t, err)

	rules := c.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, []string{"A", "B", "B"}, []string{rules[0].Switch, rules[1].Switch, rules[2].Switch})
	assert.Equal(t, int64(2), rules[2].FlowID)

	// flow 2 (B-C) has no backup and breaks; flow 1 fails over to A-D-C
	require.NoError(t, c.RemoveLink("B", "C"))
	rules = c.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"A", "D"}, []string{rules[0].Switch, rules[1].Switch})
}

func TestReadsAreIdempotent(t *testing.T) {
	c, _ := newSquare(t)
	_, _ = c.InstallFlow("A", "C", 1, false)
	_, _ = c.InstallFlow("B", "D", 1, false)
	assert.Equal(t, c.ListFlows(), c.ListFlows())
	assert.Equal(t, c.UtilizationReport(), c.UtilizationReport())
}

func TestConcurrentMutations(t *testing.T) {
	c := New(WithMaxPaths(4))
	for i := 0; i < 8; i++ {
		require.NoError(t, c.AddLink(fmt.Sprintf("s%d", i), fmt.Sprintf("s%d", (i+1)%8), 10))
	}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				_, _ = c.InstallFlow(fmt.Sprintf("s%d", w), fmt.Sprintf("s%d", (w+i)%8), 1, false)
				_ = c.UtilizationReport()
				if i == 10 {
					_ = c.RemoveLink(fmt.Sprintf("s%d", w), fmt.Sprintf("s%d", (w+1)%8))
				}
			}
		}(w)
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, f := range c.ListFlows() {
		assert.False(t, seen[f.ID])
		seen[f.ID] = true
	}
}
