package reconcile

// Desired is the caller-supplied target state for one organization. It is
// immutable for the duration of a run.
type Desired struct {
	Name    string
	Present bool
	DryRun  bool
}

// Result is the single output of a reconcile run.
type Result struct {
	OrgID   int64  `json:"org_id"`
	OrgName string `json:"org_name"`
	Message string `json:"msg"`
	Changed bool   `json:"changed"`

	// Action is what the run did (or would do in dry-run mode).
	Action string `json:"-"`
}

const (
	ActionCreate = "create"
	ActionDelete = "delete"
	ActionNone   = "none"
)
