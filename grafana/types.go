package grafana

// NotFound is the sentinel org ID reported when the organization does not
// exist remotely or the lookup could not be completed.
const NotFound int64 = -1

// Org is the observed remote state of one organization at the moment of an
// API call.
type Org struct {
	ID      int64
	Name    string
	Status  int
	Message string
}

// Exists reports whether the lookup found a real organization.
func (o Org) Exists() bool {
	return o.ID != NotFound
}

type orgBody struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type createBody struct {
	OrgID   int64  `json:"orgId"`
	Message string `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
}
