package state

// Entry is one recorded reconcile run.
type Entry struct {
	Name      string `json:"name"`
	Action    string `json:"action"`
	OrgID     int64  `json:"orgId"`
	Message   string `json:"message"`
	Changed   bool   `json:"changed"`
	Timestamp int64  `json:"timestamp"`
}
