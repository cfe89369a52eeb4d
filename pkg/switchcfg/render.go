package switchcfg

import (
	"fmt"
	"sort"
	"strings"

	"sdn-controller/pkg/model"
)

// TableConfig is the rendered forwarding table of one switch.
type TableConfig struct {
	Switch string
	Text   string
}

// RenderTable builds an ovs-ofctl style listing of the rules programmed on a
// switch. Rules are ordered by destination then flow id so the output is
// stable between calls.
//   - sw: switch name written in the header
//   - rules: entries whose Switch equals sw; others are skipped
func RenderTable(sw string, rules []model.FlowRule) TableConfig {
	own := make([]model.FlowRule, 0, len(rules))
	for _, r := range rules {
		if r.Switch == sw {
			own = append(own, r)
		}
	}
	sort.SliceStable(own, func(i, j int) bool {
		if own[i].MatchDestination != own[j].MatchDestination {
			return own[i].MatchDestination < own[j].MatchDestination
		}
		return own[i].FlowID < own[j].FlowID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "switch %s\n", sw)
	for _, r := range own {
		fmt.Fprintf(&b, " cookie=%#x, priority=%d, dl_dst=%s actions=output:%s\n",
			r.FlowID, r.Priority, r.MatchDestination, portName(sw, r.OutputTowards))
	}
	b.WriteString("!\n")
	return TableConfig{Switch: sw, Text: b.String()}
}

// portName names the port on sw that faces peer.
func portName(sw, peer string) string {
	return sw + "-" + peer
}

// GroupBySwitch splits rules per switch.
func GroupBySwitch(rules []model.FlowRule) map[string][]model.FlowRule {
	res := make(map[string][]model.FlowRule)
	for _, r := range rules {
		res[r.Switch] = append(res[r.Switch], r)
	}
	return res
}
