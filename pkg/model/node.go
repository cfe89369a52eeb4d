package model

// Link is an undirected edge between two switches.
type Link struct {
	U        string `json:"u"`
	V        string `json:"v"`
	Weight   int    `json:"weight"`
	Capacity int    `json:"capacity"`
}

// TopologyView is a read-only copy of the graph handed to visualizers.
type TopologyView struct {
	Nodes []string `json:"nodes"`
	Links []Link   `json:"links"`
}
