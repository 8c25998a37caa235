package stdlib

import (
	"math"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerArith(l *engine.Library) {
	l.Register(sig("is", 2), Is)
	l.Register(sig("=:=", 2), numCompare(func(c int) bool { return c == 0 }))
	l.Register(sig(`=\=`, 2), numCompare(func(c int) bool { return c != 0 }))
	l.Register(sig("<", 2), numCompare(func(c int) bool { return c < 0 }))
	l.Register(sig(">", 2), numCompare(func(c int) bool { return c > 0 }))
	l.Register(sig("=<", 2), numCompare(func(c int) bool { return c <= 0 }))
	l.Register(sig(">=", 2), numCompare(func(c int) bool { return c >= 0 }))
}

// Is implements is/2.
func Is(r *engine.Request) *engine.Responses {
	v, err := Eval(r.Apply(1))
	if err != nil {
		return r.Raise(err)
	}
	return r.UnifyOnce(r.Args[0], v)
}

func numCompare(ok func(int) bool) engine.Primitive {
	return func(r *engine.Request) *engine.Responses {
		a, err := Eval(r.Apply(0))
		if err != nil {
			return r.Raise(err)
		}
		b, err := Eval(r.Apply(1))
		if err != nil {
			return r.Raise(err)
		}
		if ok(compareNumbers(a, b)) {
			return r.Succeed()
		}
		return engine.Fail()
	}
}

func compareNumbers(a, b term.Term) int {
	ai, aInt := a.(term.Integer)
	bi, bInt := b.(term.Integer)
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	x, y := toFloat(a), toFloat(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func toFloat(t term.Term) float64 {
	switch n := t.(type) {
	case term.Integer:
		return float64(n)
	case term.Real:
		return float64(n)
	}
	return math.NaN()
}

// Eval evaluates an arithmetic expression whose variables are already
// substituted. The result is a term.Integer or a term.Real.
func Eval(t term.Term) (term.Term, error) {
	switch t := t.(type) {
	case term.Integer, term.Real:
		return t, nil
	case term.Var:
		return nil, engine.InstantiationError(t)
	case term.Atom:
		if v, ok := constants[t]; ok {
			return v, nil
		}
		return nil, notEvaluable(t)
	case *term.Struct:
		args := make([]term.Term, len(t.Args))
		for i, a := range t.Args {
			v, err := Eval(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		switch len(args) {
		case 1:
			if fn, ok := unaryOps[t.Functor]; ok {
				return fn(args[0])
			}
		case 2:
			if fn, ok := binaryOps[t.Functor]; ok {
				return fn(args[0], args[1])
			}
		}
	}
	return nil, notEvaluable(t)
}

func notEvaluable(t term.Term) error {
	if ind, ok := term.IndicatorOf(t); ok {
		return engine.TypeError("evaluable", ind.Term())
	}
	return engine.TypeError("evaluable", t)
}

var constants = map[term.Atom]term.Term{
	"pi":                 term.Real(math.Pi),
	"e":                  term.Real(math.E),
	"max_tagged_integer": term.Integer(math.MaxInt64),
	"min_tagged_integer": term.Integer(math.MinInt64),
}

func negate(a term.Term) (term.Term, error) {
	if i, ok := a.(term.Integer); ok {
		if i == math.MinInt64 {
			return nil, engine.EvaluationError("int_overflow")
		}
		return -i, nil
	}
	return -a.(term.Real), nil
}

var unaryOps = map[string]func(term.Term) (term.Term, error){
	"-": negate,
	"+": func(a term.Term) (term.Term, error) { return a, nil },
	`\`: func(a term.Term) (term.Term, error) {
		if i, ok := a.(term.Integer); ok {
			return ^i, nil
		}
		return nil, engine.TypeError("integer", a)
	},
	"abs": func(a term.Term) (term.Term, error) {
		if i, ok := a.(term.Integer); ok {
			if i < 0 {
				return negate(i)
			}
			return i, nil
		}
		return term.Real(math.Abs(float64(a.(term.Real)))), nil
	},
	"sign": func(a term.Term) (term.Term, error) {
		if i, ok := a.(term.Integer); ok {
			switch {
			case i > 0:
				return term.Integer(1), nil
			case i < 0:
				return term.Integer(-1), nil
			}
			return term.Integer(0), nil
		}
		f := float64(a.(term.Real))
		switch {
		case f > 0:
			return term.Real(1), nil
		case f < 0:
			return term.Real(-1), nil
		}
		return term.Real(0), nil
	},
}

var binaryOps = map[string]func(a, b term.Term) (term.Term, error){
	"+": mixed(addInt, func(x, y float64) float64 { return x + y }),
	"-": mixed(subInt, func(x, y float64) float64 { return x - y }),
	"*": mixed(mulInt, func(x, y float64) float64 { return x * y }),
	"/": divide,
	"//": integers(func(x, y int64) (term.Term, error) {
		if y == 0 {
			return nil, engine.EvaluationError("zero_divisor")
		}
		if x == math.MinInt64 && y == -1 {
			return nil, engine.EvaluationError("int_overflow")
		}
		return term.Integer(x / y), nil
	}),
	"mod": integers(func(x, y int64) (term.Term, error) {
		if y == 0 {
			return nil, engine.EvaluationError("zero_divisor")
		}
		if y == -1 {
			return term.Integer(0), nil
		}
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return term.Integer(m), nil
	}),
	"rem": integers(func(x, y int64) (term.Term, error) {
		if y == 0 {
			return nil, engine.EvaluationError("zero_divisor")
		}
		if y == -1 {
			return term.Integer(0), nil
		}
		return term.Integer(x % y), nil
	}),
	"min": func(a, b term.Term) (term.Term, error) {
		if compareNumbers(b, a) < 0 {
			return b, nil
		}
		return a, nil
	},
	"max": func(a, b term.Term) (term.Term, error) {
		if compareNumbers(b, a) > 0 {
			return b, nil
		}
		return a, nil
	},
	"**": func(a, b term.Term) (term.Term, error) {
		return term.Real(math.Pow(toFloat(a), toFloat(b))), nil
	},
	"^":  power,
	`/\`: integers(func(x, y int64) (term.Term, error) { return term.Integer(x & y), nil }),
	`\/`: integers(func(x, y int64) (term.Term, error) { return term.Integer(x | y), nil }),
	"<<": integers(func(x, y int64) (term.Term, error) { return term.Integer(x << uint64(y&63)), nil }),
	">>": integers(func(x, y int64) (term.Term, error) { return term.Integer(x >> uint64(y&63)), nil }),
}

// mixed is integer arithmetic when both operands are integers and float
// arithmetic otherwise.
func mixed(ints func(x, y int64) (term.Term, error), floats func(x, y float64) float64) func(a, b term.Term) (term.Term, error) {
	return func(a, b term.Term) (term.Term, error) {
		x, xInt := a.(term.Integer)
		y, yInt := b.(term.Integer)
		if xInt && yInt {
			return ints(int64(x), int64(y))
		}
		return term.Real(floats(toFloat(a), toFloat(b))), nil
	}
}

func integers(fn func(x, y int64) (term.Term, error)) func(a, b term.Term) (term.Term, error) {
	return func(a, b term.Term) (term.Term, error) {
		x, ok := a.(term.Integer)
		if !ok {
			return nil, engine.TypeError("integer", a)
		}
		y, ok := b.(term.Integer)
		if !ok {
			return nil, engine.TypeError("integer", b)
		}
		return fn(int64(x), int64(y))
	}
}

func addInt(x, y int64) (term.Term, error) {
	s := x + y
	if (s > x) != (y > 0) {
		return nil, engine.EvaluationError("int_overflow")
	}
	return term.Integer(s), nil
}

func subInt(x, y int64) (term.Term, error) {
	d := x - y
	if (d < x) != (y > 0) {
		return nil, engine.EvaluationError("int_overflow")
	}
	return term.Integer(d), nil
}

func mulInt(x, y int64) (term.Term, error) {
	if x == 0 || y == 0 {
		return term.Integer(0), nil
	}
	p := x * y
	if p/y != x || (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return nil, engine.EvaluationError("int_overflow")
	}
	return term.Integer(p), nil
}

// divide is / : exact integer quotients stay integers.
func divide(a, b term.Term) (term.Term, error) {
	if toFloat(b) == 0 {
		return nil, engine.EvaluationError("zero_divisor")
	}
	x, xInt := a.(term.Integer)
	y, yInt := b.(term.Integer)
	if xInt && yInt && !(x == math.MinInt64 && y == -1) && x%y == 0 {
		return x / y, nil
	}
	return term.Real(toFloat(a) / toFloat(b)), nil
}

func power(a, b term.Term) (term.Term, error) {
	x, xInt := a.(term.Integer)
	y, yInt := b.(term.Integer)
	if !xInt || !yInt {
		return term.Real(math.Pow(toFloat(a), toFloat(b))), nil
	}
	if y < 0 {
		switch x {
		case 1:
			return term.Integer(1), nil
		case -1:
			if y%2 == 0 {
				return term.Integer(1), nil
			}
			return term.Integer(-1), nil
		case 0:
			return nil, engine.EvaluationError("zero_divisor")
		}
		return nil, engine.TypeError("float", a)
	}
	result, base, e := int64(1), int64(x), int64(y)
	for e > 0 {
		if e&1 == 1 {
			p, err := mulInt(result, base)
			if err != nil {
				return nil, err
			}
			result = int64(p.(term.Integer))
		}
		e >>= 1
		if e > 0 {
			sq, err := mulInt(base, base)
			if err != nil {
				return nil, err
			}
			base = int64(sq.(term.Integer))
		}
	}
	return term.Integer(result), nil
}
