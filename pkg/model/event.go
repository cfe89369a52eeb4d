package model

import "time"

// EventKind names a control plane event.
type EventKind string

const (
	EventNodeAdded         EventKind = "NodeAdded"
	EventNodeRemoved       EventKind = "NodeRemoved"
	EventLinkAdded         EventKind = "LinkAdded"
	EventLinkRemoved       EventKind = "LinkRemoved"
	EventFlowInstalled     EventKind = "FlowInstalled"
	EventFlowInstallFailed EventKind = "FlowInstallFailed"
	EventFlowProgrammed    EventKind = "FlowProgrammed"
	EventFlowRerouted      EventKind = "FlowRerouted"
	EventFlowBroken        EventKind = "FlowBroken"
	EventFlowRemoved       EventKind = "FlowRemoved"
)

// Event is emitted on every topology or flow table change.
// Only the fields relevant to Kind are populated.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	Node     string `json:"node,omitempty"`
	U        string `json:"u,omitempty"`
	V        string `json:"v,omitempty"`
	Capacity int    `json:"capacity"`

	FlowID int64    `json:"flowId,omitempty"`
	Src    string   `json:"src,omitempty"`
	Dst    string   `json:"dst,omitempty"`
	Path   []string `json:"path,omitempty"`
	Backup []string `json:"backup,omitempty"`
	Reason string   `json:"reason,omitempty"`

	Rule *FlowRule `json:"rule,omitempty"`
}
