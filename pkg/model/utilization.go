package model

// LinkLoad counts the flows crossing one direction of a link.
type LinkLoad struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Used     int    `json:"used"`
	Capacity int    `json:"capacity"` // 0 when the link no longer exists
}
