package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/clausal/internal/term"
)

// BatchResult holds the solutions of one goal of a batch.
type BatchResult struct {
	Goal      term.Term
	QueryID   string
	Seq       int64
	Solutions []Solution
	Steps     int64
}

// Yes counts the successful solutions.
func (b BatchResult) Yes() int {
	n := 0
	for _, s := range b.Solutions {
		if s.Kind == KindYes {
			n++
		}
	}
	return n
}

// RunBatch solves goals concurrently, at most parallel at a time (no limit
// when parallel <= 0), and collects up to maxSolutions Yes answers per goal
// (all when maxSolutions <= 0). Results are in goal order. Every goal sees
// the knowledge bases as they were when the batch started, and their
// changes are not written back; the error is the context's when it is
// cancelled.
func (s *Solver) RunBatch(ctx context.Context, goals []term.Term, parallel, maxSolutions int) ([]BatchResult, error) {
	results := make([]BatchResult, len(goals))
	base := s.fork()
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, goal := range goals {
		g.Go(func() error {
			sols := base.fork().Solve(gctx, goal)
			res := BatchResult{Goal: goal, QueryID: sols.QueryID(), Seq: sols.Seq()}
			for sol := range sols.All() {
				res.Solutions = append(res.Solutions, sol)
				if maxSolutions > 0 && res.Yes() >= maxSolutions {
					break
				}
			}
			res.Steps = sols.Steps()
			results[i] = res
			return gctx.Err()
		})
	}
	err := g.Wait()
	slog.Debug("batch finished",
		"goals", len(goals),
		"parallel", parallel,
	)
	return results, err
}

// fork returns a solver over s's current state that shares its
// configuration, clock and ID generator. Its queries commit to the fork
// only.
func (s *Solver) fork() *Solver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &Solver{
		static:      s.static,
		dynamic:     s.dynamic,
		flags:       s.flags,
		library:     s.library,
		maxDuration: s.maxDuration,
		maxSteps:    s.maxSteps,
		output:      s.output,
		warn:        s.warn,
		metrics:     s.metrics,
		ids:         s.ids,
		clock:       s.clock,
		now:         s.now,
	}
}
