package theory

import (
	"maps"
	"math"

	"github.com/roach88/clausal/internal/term"
)

// indexDepth is how many leading arguments get their own tree level. Later
// arguments are left to unification.
const indexDepth = 3

type keyTag uint8

const (
	tagAtom keyTag = iota + 1
	tagInt
	tagReal
	tagStruct
)

// argKey is the structural key of one argument: its constant value, or the
// functor and arity of a compound. Variables have no key and go to the
// wildcard child.
type argKey struct {
	tag   keyTag
	name  string
	n     int64
	arity int
}

func keyOf(t term.Term) (argKey, bool) {
	switch t := t.(type) {
	case term.Atom:
		return argKey{tag: tagAtom, name: string(t)}, true
	case term.Integer:
		return argKey{tag: tagInt, n: int64(t)}, true
	case term.Real:
		f := float64(t)
		if f == 0 {
			// -0.0 == 0.0, so both must share a bucket.
			f = 0
		}
		return argKey{tag: tagReal, n: int64(math.Float64bits(f))}, true
	case *term.Struct:
		return argKey{tag: tagStruct, name: t.Functor, arity: len(t.Args)}, true
	case *term.Clause:
		return argKey{tag: tagStruct, name: ":-", arity: len(t.Struct().Args)}, true
	}
	return argKey{}, false
}

// entry is a stored clause stamped with its position in declaration order.
type entry struct {
	seq    int64
	clause *term.Clause
}

// argNode is one argument level of the tree. Nodes are never modified once
// published; every update copies the path from the root down.
type argNode struct {
	children map[argKey]*argNode
	wildcard *argNode
	bucket   []entry // only at the last level
	size     int
}

func (n *argNode) clone() *argNode {
	if n == nil {
		return &argNode{}
	}
	c := *n
	if n.children != nil {
		c.children = maps.Clone(n.children)
	}
	return &c
}

// insert returns a copy of n with e added along the path given by args.
func (n *argNode) insert(args []term.Term, depth int, e entry, front bool) *argNode {
	out := n.clone()
	out.size++
	if depth == 0 || len(args) == 0 {
		bucket := make([]entry, 0, len(out.bucket)+1)
		if front {
			bucket = append(bucket, e)
			bucket = append(bucket, out.bucket...)
		} else {
			bucket = append(bucket, out.bucket...)
			bucket = append(bucket, e)
		}
		out.bucket = bucket
		return out
	}
	k, ok := keyOf(args[0])
	if !ok {
		out.wildcard = out.wildcard.insert(args[1:], depth-1, e, front)
		return out
	}
	if out.children == nil {
		out.children = map[argKey]*argNode{}
	}
	out.children[k] = out.children[k].insert(args[1:], depth-1, e, front)
	return out
}

// remove returns a copy of n without the entry stamped seq, or nil when the
// subtree becomes empty.
func (n *argNode) remove(args []term.Term, depth int, seq int64) *argNode {
	if n == nil {
		return nil
	}
	out := n.clone()
	out.size--
	if out.size == 0 {
		return nil
	}
	if depth == 0 || len(args) == 0 {
		bucket := make([]entry, 0, len(n.bucket)-1)
		for _, e := range n.bucket {
			if e.seq != seq {
				bucket = append(bucket, e)
			}
		}
		out.bucket = bucket
		return out
	}
	k, ok := keyOf(args[0])
	if !ok {
		out.wildcard = n.wildcard.remove(args[1:], depth-1, seq)
		return out
	}
	child := n.children[k].remove(args[1:], depth-1, seq)
	if child == nil {
		delete(out.children, k)
	} else {
		out.children[k] = child
	}
	return out
}

// collect appends the buckets reachable for a query with the given
// (substitution-applied) arguments. A variable argument fans out over every
// child; a bound one follows its own key plus the wildcard child.
func (n *argNode) collect(args []term.Term, depth int, out [][]entry) [][]entry {
	if n == nil {
		return out
	}
	if depth == 0 || len(args) == 0 {
		if len(n.bucket) > 0 {
			out = append(out, n.bucket)
		}
		return out
	}
	k, ok := keyOf(args[0])
	if !ok {
		for _, c := range n.children {
			out = c.collect(args[1:], depth-1, out)
		}
	} else {
		out = n.children[k].collect(args[1:], depth-1, out)
	}
	return n.wildcard.collect(args[1:], depth-1, out)
}

// functorNode is the functor level: name then arity. The arity level is
// keyed inline to keep the map count down.
type functorNode struct {
	preds map[term.Indicator]*argNode
	size  int
}

func (f *functorNode) clone() *functorNode {
	if f == nil {
		return &functorNode{preds: map[term.Indicator]*argNode{}}
	}
	return &functorNode{preds: maps.Clone(f.preds), size: f.size}
}

// mergeBuckets yields entries from several seq-sorted buckets in global seq
// order.
func mergeBuckets(buckets [][]entry, yield func(entry) bool) {
	if len(buckets) == 1 {
		for _, e := range buckets[0] {
			if !yield(e) {
				return
			}
		}
		return
	}
	pos := make([]int, len(buckets))
	for {
		best := -1
		for i, b := range buckets {
			if pos[i] < len(b) && (best < 0 || b[pos[i]].seq < buckets[best][pos[best]].seq) {
				best = i
			}
		}
		if best < 0 {
			return
		}
		e := buckets[best][pos[best]]
		pos[best]++
		if !yield(e) {
			return
		}
	}
}
