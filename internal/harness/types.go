package harness

// Trace event types.
const (
	EventSolution = "solution"
	EventWarning  = "warning"
	EventOutput   = "output"
)

// TraceEvent is one observable step of a scenario run.
type TraceEvent struct {
	Type     string            `json:"type"`
	Query    int               `json:"query"` // index into Scenario.Queries
	QueryID  string            `json:"query_id"`
	Seq      int64             `json:"seq"` // position within the query's events
	Kind     string            `json:"kind,omitempty"`
	Bindings map[string]string `json:"bindings,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// QueryResult collects what one query produced.
type QueryResult struct {
	Goal      string
	QueryID   string
	Solutions []map[string]string // Yes answers
	Outcome   string              // kind of the last solution
	Err       error
	Output    string
	Warnings  []string
	Steps     int64
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors holds the failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Queries []QueryResult `json:"-"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
