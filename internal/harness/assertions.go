package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// checkExpect compares a query's results with its expectations and returns
// one message per mismatch.
func checkExpect(e *Expect, qr QueryResult) []string {
	var errs []string

	if e.Solutions != nil {
		errs = append(errs, checkSolutions(e.Solutions, qr.Solutions)...)
	}
	if e.Outcome != "" && e.Outcome != qr.Outcome {
		detail := ""
		if qr.Err != nil {
			detail = fmt.Sprintf(" (%v)", qr.Err)
		}
		errs = append(errs, fmt.Sprintf("outcome: expected %s, got %s%s", e.Outcome, qr.Outcome, detail))
	}
	if e.ErrorContains != "" {
		switch {
		case qr.Err == nil:
			errs = append(errs, fmt.Sprintf("error: expected one containing %q, got none", e.ErrorContains))
		case !strings.Contains(qr.Err.Error(), e.ErrorContains):
			errs = append(errs, fmt.Sprintf("error: expected one containing %q, got %q", e.ErrorContains, qr.Err.Error()))
		}
	}
	if e.Output != nil && *e.Output != qr.Output {
		errs = append(errs, fmt.Sprintf("output: expected %q, got %q", *e.Output, qr.Output))
	}
	if e.Warnings != nil && !slices.Equal(e.Warnings, qr.Warnings) {
		errs = append(errs, fmt.Sprintf("warnings: expected %q, got %q", e.Warnings, qr.Warnings))
	}
	return errs
}

func checkSolutions(want, got []map[string]string) []string {
	var errs []string
	for i := range max(len(want), len(got)) {
		switch {
		case i >= len(got):
			errs = append(errs, fmt.Sprintf("solution %d: expected %s, got none", i+1, formatBindings(want[i])))
		case i >= len(want):
			errs = append(errs, fmt.Sprintf("solution %d: unexpected %s", i+1, formatBindings(got[i])))
		case !maps.Equal(want[i], normalize(got[i])):
			errs = append(errs, fmt.Sprintf("solution %d: expected %s, got %s", i+1, formatBindings(want[i]), formatBindings(got[i])))
		}
	}
	return errs
}

func normalize(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// formatBindings renders bindings as "{X=a, Y=b}" in name order.
func formatBindings(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, k+"="+m[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
