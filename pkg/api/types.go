package api

import "sdn-controller/pkg/model"

type NodeRequest struct {
	ID string `json:"id"`
}

// LinkRequest adds or replaces a link. Capacity defaults to the controller's
// configured default when omitted.
type LinkRequest struct {
	U        string `json:"u"`
	V        string `json:"v"`
	Capacity *int   `json:"capacity,omitempty"`
}

type FlowRequest struct {
	Src      string `json:"src"`
	Dst      string `json:"dst"`
	Priority *int   `json:"priority,omitempty"` // defaults to 1
	Critical bool   `json:"critical,omitempty"`
}

type FlowResponse struct {
	ID   int64      `json:"id"`
	Flow model.Flow `json:"flow"`
}

// SwitchRulesResponse carries the forwarding table of one switch in both
// structured and rendered form.
type SwitchRulesResponse struct {
	Switch string           `json:"switch"`
	Rules  []model.FlowRule `json:"rules"`
	Text   string           `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}
