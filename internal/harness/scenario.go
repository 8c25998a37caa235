package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/clausal/internal/engine"
)

// Scenario is a conformance scenario.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Theory is Prolog source consulted before the queries.
	Theory string `yaml:"theory,omitempty"`

	// Consult lists source files consulted after Theory, relative to the
	// scenario file.
	Consult []string `yaml:"consult,omitempty"`

	// Flags sets engine flags, e.g. {unknown: error}.
	Flags map[string]string `yaml:"flags,omitempty"`

	// MaxSteps bounds every query. Zero means unlimited.
	MaxSteps int64 `yaml:"max_steps,omitempty"`

	Queries []Query `yaml:"queries"`
}

// Query is one goal and what it must produce.
type Query struct {
	Goal string `yaml:"goal"`

	// MaxSolutions stops the enumeration early. Zero means DefaultMaxSolutions.
	MaxSolutions int `yaml:"max_solutions,omitempty"`

	// Timeout is a Go duration such as "500ms".
	Timeout string `yaml:"timeout,omitempty"`

	// Expect is optional; without it the query only contributes to the trace.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes the answers of a query.
type Expect struct {
	// Solutions are the Yes answers in order, each mapping variable names to
	// formatted values. An empty map stands for a Yes without bindings.
	Solutions []map[string]string `yaml:"solutions,omitempty"`

	// Outcome is the kind of the last solution: yes, no, error or halt.
	Outcome string `yaml:"outcome,omitempty"`

	// ErrorContains must be a substring of the final error.
	ErrorContains string `yaml:"error_contains,omitempty"`

	// Output is the exact text written by output predicates.
	Output *string `yaml:"output,omitempty"`

	// Warnings are the warning messages in order.
	Warnings []string `yaml:"warnings,omitempty"`
}

// DefaultMaxSolutions caps enumerations that set no limit.
const DefaultMaxSolutions = 100

var outcomes = []string{
	engine.KindYes.String(),
	engine.KindNo.String(),
	engine.KindError.String(),
	engine.KindHalt.String(),
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos do not silently disable checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, p := range s.Consult {
		if !filepath.IsAbs(p) {
			s.Consult[i] = filepath.Join(base, p)
		}
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadDir loads every *.yaml and *.yml scenario under dir, sorted by path.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ext := filepath.Ext(path); !d.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	slices.Sort(paths)

	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}
	for name := range s.Flags {
		if name != engine.FlagOccursCheck && name != engine.FlagUnknown {
			return fmt.Errorf("flags: unknown flag %q", name)
		}
	}

	for i, q := range s.Queries {
		if q.Goal == "" {
			return fmt.Errorf("queries[%d]: goal is required", i)
		}
		if q.MaxSolutions < 0 {
			return fmt.Errorf("queries[%d]: max_solutions must be non-negative", i)
		}
		if q.Timeout != "" {
			if _, err := time.ParseDuration(q.Timeout); err != nil {
				return fmt.Errorf("queries[%d]: timeout: %w", i, err)
			}
		}
		if q.Expect != nil && q.Expect.Outcome != "" && !slices.Contains(outcomes, q.Expect.Outcome) {
			return fmt.Errorf("queries[%d].expect: unknown outcome %q", i, q.Expect.Outcome)
		}
	}
	return nil
}
