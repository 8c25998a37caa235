package engine

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/clausal/internal/term"
	"github.com/roach88/clausal/internal/theory"
)

// Signature identifies a primitive. A variadic signature matches any arity
// at or above Arity.
type Signature struct {
	Name     string
	Arity    int
	Variadic bool
}

// Indicator returns Name/Arity.
func (s Signature) Indicator() term.Indicator {
	return term.Indicator{Name: s.Name, Arity: s.Arity}
}

func (s Signature) String() string {
	if s.Variadic {
		return fmt.Sprintf("%s/%d+", s.Name, s.Arity)
	}
	return s.Indicator().String()
}

// Primitive implements a built-in predicate. It returns a lazy stream of
// responses; each success becomes one backtrackable solution of the call.
type Primitive func(*Request) *Responses

// Library maps signatures to primitives. Build it up front; it is read
// concurrently by every query once solving starts.
type Library struct {
	exact    map[term.Indicator]libEntry
	variadic []libEntry
}

type libEntry struct {
	sig  Signature
	prim Primitive
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{exact: map[term.Indicator]libEntry{}}
}

// Register adds or replaces a primitive.
func (l *Library) Register(sig Signature, p Primitive) {
	e := libEntry{sig: sig, prim: p}
	if !sig.Variadic {
		l.exact[sig.Indicator()] = e
		return
	}
	l.variadic = slices.DeleteFunc(l.variadic, func(x libEntry) bool { return x.sig == sig })
	l.variadic = append(l.variadic, e)
	// Longest fixed prefix wins.
	slices.SortStableFunc(l.variadic, func(a, b libEntry) int { return cmp.Compare(b.sig.Arity, a.sig.Arity) })
}

// Lookup finds the primitive for ind: an exact match first, then a variadic
// one.
func (l *Library) Lookup(ind term.Indicator) (Signature, Primitive, bool) {
	if l == nil {
		return Signature{}, nil, false
	}
	if e, ok := l.exact[ind]; ok {
		return e.sig, e.prim, true
	}
	for _, e := range l.variadic {
		if e.sig.Name == ind.Name && ind.Arity >= e.sig.Arity {
			return e.sig, e.prim, true
		}
	}
	return Signature{}, nil, false
}

// Merge returns a library holding l's primitives overridden by other's.
func (l *Library) Merge(other *Library) *Library {
	out := NewLibrary()
	for _, src := range []*Library{l, other} {
		if src == nil {
			continue
		}
		maps.Copy(out.exact, src.exact)
		for _, e := range src.variadic {
			out.Register(e.sig, e.prim)
		}
	}
	return out
}

// Signatures lists the registered signatures sorted by name and arity.
func (l *Library) Signatures() []Signature {
	var out []Signature
	for _, e := range l.exact {
		out = append(out, e.sig)
	}
	for _, e := range l.variadic {
		out = append(out, e.sig)
	}
	slices.SortFunc(out, func(a, b Signature) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Arity, b.Arity))
	})
	return out
}

// Request is one call of a primitive.
type Request struct {
	Context   *Context
	Signature Signature
	Args      []term.Term
}

// Arg returns argument i with its top-level binding resolved.
func (r *Request) Arg(i int) term.Term {
	return r.Context.Substitution.Resolve(r.Args[i])
}

// Apply returns argument i with the substitution fully applied.
func (r *Request) Apply(i int) term.Term {
	return r.Context.Substitution.Apply(r.Args[i])
}

// Culprit returns the call's indicator, the usual context of its errors.
func (r *Request) Culprit() term.Term {
	return term.Indicator{Name: r.Signature.Name, Arity: len(r.Args)}.Term()
}

// Unify extends the current substitution so that a and b are equal.
func (r *Request) Unify(a, b term.Term) (*term.Substitution, bool) {
	return r.Context.Substitution.Unify(a, b, r.Context.OccursCheck())
}

// Success returns a response that continues with sub and unchanged
// knowledge bases.
func (r *Request) Success(sub *term.Substitution) Response {
	return Response{Substitution: sub}
}

// Succeed succeeds once without new bindings.
func (r *Request) Succeed() *Responses {
	return Of(r.Success(r.Context.Substitution))
}

// UnifyOnce succeeds once if a and b unify.
func (r *Request) UnifyOnce(a, b term.Term) *Responses {
	sub, ok := r.Unify(a, b)
	if !ok {
		return Fail()
	}
	return Of(r.Success(sub))
}

// Raise fails the call with err. A *PrologError is attached the call's
// indicator as its context when it has none.
func (r *Request) Raise(err error) *Responses {
	if pe, ok := err.(*PrologError); ok && pe.Context == nil {
		cp := *pe
		cp.Context = r.Culprit()
		err = &cp
	}
	return Raise(err)
}

// Call succeeds once by running goal in place of the primitive call. The
// goal runs in the same resolution as its caller.
func (r *Request) Call(goal term.Term) *Responses {
	return Of(Response{Substitution: r.Context.Substitution, Then: goal})
}

// Response is one outcome of a primitive call. A nil knowledge base or flag
// map means unchanged.
type Response struct {
	Substitution *term.Substitution
	StaticKB     *theory.Theory
	DynamicKB    *theory.Theory
	Flags        Flags
	Err          error

	// Then is a goal that runs in place of the call once this response is
	// taken, as if by call/1: cut inside it is local.
	Then term.Term
}

// Responses is a lazily produced sequence of responses. It is a cursor:
// each response is delivered once.
type Responses struct {
	buf  []Response
	next func() (Response, bool, bool)
	done bool
}

// Of returns a stream of fixed responses.
func Of(rs ...Response) *Responses {
	return &Responses{buf: rs, done: len(rs) == 0}
}

// Fail returns an empty stream.
func Fail() *Responses { return &Responses{done: true} }

// Raise returns a stream holding a single error.
func Raise(err error) *Responses { return Of(Response{Err: err}) }

// Stream wraps a generator. next returns a response, whether there was
// one, and whether more may follow.
func Stream(next func() (r Response, ok, more bool)) *Responses {
	return &Responses{next: next}
}

// Next returns the next response.
func (rs *Responses) Next() (Response, bool) {
	if rs.done {
		return Response{}, false
	}
	if rs.next == nil {
		r := rs.buf[0]
		rs.buf = rs.buf[1:]
		rs.done = len(rs.buf) == 0
		return r, true
	}
	r, ok, more := rs.next()
	if !ok || !more {
		rs.done = true
	}
	return r, ok
}

// Done reports whether the stream is known to be exhausted.
func (rs *Responses) Done() bool { return rs.done }
