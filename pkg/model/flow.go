package model

import "time"

// FlowStatus reports whether a flow still has usable forwarding state.
type FlowStatus string

const (
	FlowActive FlowStatus = "active"
	// FlowBroken marks a flow hit by a link failure with no backup left; its path is stale.
	FlowBroken FlowStatus = "broken"
)

// Flow is a routed demand between two switches.
type Flow struct {
	ID          int64      `json:"id"`
	Src         string     `json:"src"`
	Dst         string     `json:"dst"`
	Priority    int        `json:"priority"`
	Critical    bool       `json:"critical"`
	Path        []string   `json:"primaryPath"`
	Backup      []string   `json:"backupPath,omitempty"` // empty when no alternate shortest path existed
	Status      FlowStatus `json:"status"`
	Failovers   int        `json:"failovers,omitempty"`
	InstalledAt time.Time  `json:"installedAt"`
}

// HasBackup reports whether a failover path is still available.
func (f Flow) HasBackup() bool {
	return len(f.Backup) > 0
}

// Hops returns the consecutive (switch, next hop) pairs of the primary path.
func (f Flow) Hops() [][2]string {
	if len(f.Path) < 2 {
		return nil
	}
	out := make([][2]string, 0, len(f.Path)-1)
	for i := 0; i+1 < len(f.Path); i++ {
		out = append(out, [2]string{f.Path[i], f.Path[i+1]})
	}
	return out
}

// Clone returns a copy that shares no slices with f.
func (f Flow) Clone() Flow {
	f.Path = append([]string(nil), f.Path...)
	if f.Backup != nil {
		f.Backup = append([]string(nil), f.Backup...)
	}
	return f
}

// FlowRule is one forwarding entry programmed on a switch.
type FlowRule struct {
	FlowID           int64  `json:"flowId"`
	Switch           string `json:"switch"`
	MatchDestination string `json:"matchDestination"`
	OutputTowards    string `json:"outputTowards"`
	Priority         int    `json:"priority"`
}
