package term

// OpType is the associativity class of an operator.
type OpType string

const (
	XFX OpType = "xfx"
	XFY OpType = "xfy"
	YFX OpType = "yfx"
	FY  OpType = "fy"
	FX  OpType = "fx"
	XF  OpType = "xf"
	YF  OpType = "yf"
)

// Op is one operator definition.
type Op struct {
	Name     string
	Priority int
	Type     OpType
}

// IsPrefix reports whether the operator is written before its argument.
func (o Op) IsPrefix() bool { return o.Type == FY || o.Type == FX }

// IsPostfix reports whether the operator is written after its argument.
func (o Op) IsPostfix() bool { return o.Type == XF || o.Type == YF }

// ArgMax returns the highest priority allowed for the left and right
// operands. An absent side reports 0.
func (o Op) ArgMax() (left, right int) {
	switch o.Type {
	case XFX:
		return o.Priority - 1, o.Priority - 1
	case XFY:
		return o.Priority - 1, o.Priority
	case YFX:
		return o.Priority, o.Priority - 1
	case FY:
		return 0, o.Priority
	case FX:
		return 0, o.Priority - 1
	case XF:
		return o.Priority - 1, 0
	case YF:
		return o.Priority, 0
	}
	return 0, 0
}

// OpTable holds prefix, infix and postfix definitions by name. A name may
// have one definition of each kind.
type OpTable struct {
	prefix  map[string]Op
	infix   map[string]Op
	postfix map[string]Op
}

// NewOpTable returns an empty table.
func NewOpTable() *OpTable {
	return &OpTable{
		prefix:  map[string]Op{},
		infix:   map[string]Op{},
		postfix: map[string]Op{},
	}
}

// Add defines op, replacing a definition of the same name and kind.
// Priority 0 removes the definition.
func (t *OpTable) Add(op Op) {
	m := t.infix
	switch {
	case op.IsPrefix():
		m = t.prefix
	case op.IsPostfix():
		m = t.postfix
	}
	if op.Priority == 0 {
		delete(m, op.Name)
		return
	}
	m[op.Name] = op
}

func (t *OpTable) Prefix(name string) (Op, bool) {
	op, ok := t.prefix[name]
	return op, ok
}

func (t *OpTable) Infix(name string) (Op, bool) {
	op, ok := t.infix[name]
	return op, ok
}

func (t *OpTable) Postfix(name string) (Op, bool) {
	op, ok := t.postfix[name]
	return op, ok
}

// IsOp reports whether name has any definition.
func (t *OpTable) IsOp(name string) bool {
	_, p := t.prefix[name]
	_, i := t.infix[name]
	_, s := t.postfix[name]
	return p || i || s
}

// DefaultOps returns a fresh copy of the standard operator table.
func DefaultOps() *OpTable {
	t := NewOpTable()
	for _, op := range []Op{
		{":-", 1200, XFX}, {"-->", 1200, XFX},
		{":-", 1200, FX}, {"?-", 1200, FX},
		{";", 1100, XFY}, {"|", 1100, XFY},
		{"->", 1050, XFY}, {"*->", 1050, XFY},
		{",", 1000, XFY},
		{"\\+", 900, FY},
		{"=", 700, XFX}, {"\\=", 700, XFX},
		{"==", 700, XFX}, {"\\==", 700, XFX},
		{"@<", 700, XFX}, {"@>", 700, XFX}, {"@=<", 700, XFX}, {"@>=", 700, XFX},
		{"=..", 700, XFX}, {"is", 700, XFX},
		{"=:=", 700, XFX}, {"=\\=", 700, XFX},
		{"<", 700, XFX}, {">", 700, XFX}, {"=<", 700, XFX}, {">=", 700, XFX},
		{":", 200, XFY},
		{"+", 500, YFX}, {"-", 500, YFX}, {"/\\", 500, YFX}, {"\\/", 500, YFX},
		{"*", 400, YFX}, {"/", 400, YFX}, {"//", 400, YFX},
		{"rem", 400, YFX}, {"mod", 400, YFX}, {"<<", 400, YFX}, {">>", 400, YFX},
		{"**", 200, XFX}, {"^", 200, XFY},
		{"-", 200, FY}, {"+", 200, FY}, {"\\", 200, FY},
	} {
		t.Add(op)
	}
	return t
}

var standardOps = DefaultOps()
