package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/clausal/internal/term"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot to the value types
// term.MarshalCanonical accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		m := map[string]any{
			"type":     ev.Type,
			"query":    ev.Query,
			"query_id": ev.QueryID,
			"seq":      ev.Seq,
		}
		if ev.Kind != "" {
			m["kind"] = ev.Kind
		}
		if len(ev.Bindings) > 0 {
			m["bindings"] = ev.Bindings
		}
		if ev.Message != "" {
			m["message"] = ev.Message
		}
		trace[i] = m
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         trace,
	}
}

// MarshalTrace encodes a trace as canonical JSON.
func MarshalTrace(name string, trace []TraceEvent) ([]byte, error) {
	snap := TraceSnapshot{ScenarioName: name, Trace: trace}
	return term.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden runs a scenario and compares its trace with
// testdata/golden/<scenario.Name>.golden. Failed expectations are reported
// through t as well.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace with its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(scenarioName, result.Trace)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
