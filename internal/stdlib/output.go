package stdlib

import (
	"io"

	"github.com/roach88/clausal/internal/engine"
	"github.com/roach88/clausal/internal/term"
)

func registerOutput(l *engine.Library) {
	l.Register(sig("write", 1), writeWith(term.FormatUnquoted))
	l.Register(sig("print", 1), writeWith(term.Format))
	l.Register(sig("writeq", 1), writeWith(term.Format))
	l.Register(sig("nl", 0), func(r *engine.Request) *engine.Responses {
		return emit(r, "\n")
	})
}

func writeWith(format func(term.Term) string) engine.Primitive {
	return func(r *engine.Request) *engine.Responses {
		return emit(r, format(r.Apply(0)))
	}
}

func emit(r *engine.Request, s string) *engine.Responses {
	if _, err := io.WriteString(r.Context.Output, s); err != nil {
		return r.Raise(engine.SystemError("write failed", err))
	}
	return r.Succeed()
}
