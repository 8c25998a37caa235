// Package harness runs conformance scenarios against the engine.
//
// A scenario is a YAML file holding a theory and a list of queries with the
// answers they must produce:
//
//	name: family
//	description: ancestors are found through parent links
//	theory: |
//	  parent(tom, bob).
//	  ancestor(X, Y) :- parent(X, Y).
//	queries:
//	  - goal: ancestor(tom, Who)
//	    expect:
//	      solutions:
//	        - {Who: bob}
//	      outcome: "no"
//
// Run executes every query on a fresh solver with the standard library,
// fixed query IDs and a logical clock, so the trace it records is the same
// on every run. RunWithGolden compares that trace with
// testdata/golden/<name>.golden; regenerate the files with
//
//	go test ./internal/harness -update
package harness
