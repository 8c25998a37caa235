package term

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON (RFC 8785 key order, NFC strings,
// no HTML escaping, no floats) for terms and plain Go values. It is the only
// encoding used for content hashes and golden traces.
//
// Terms are encoded as tagged objects:
//
//	{"atom":"foo"}  {"int":42}  {"real":"2.5"}
//	{"var":0,"name":"X"}
//	{"functor":"f","args":[...]}
//	{"head":...,"body":...}     (head omitted for directives)
//
// Variables are numbered by first appearance within the marshaled value, so
// two alpha-equivalent terms with the same variable names encode identically.
// Reals are carried as strings because floats are not canonical.
func MarshalCanonical(v any) ([]byte, error) {
	enc := &canonicalEncoder{vars: map[int64]int{}}
	val, err := enc.toValue(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeCanonical(&buf, val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type canonicalEncoder struct {
	vars map[int64]int
}

func (e *canonicalEncoder) toValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case Term:
		return e.termValue(val)
	case string, bool, int64:
		return val, nil
	case int:
		return int64(val), nil
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			ev, err := e.toValue(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = ev
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			ev, err := e.toValue(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			out[k] = ev
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func (e *canonicalEncoder) termValue(t Term) (any, error) {
	switch t := t.(type) {
	case Var:
		idx, ok := e.vars[t.ID]
		if !ok {
			idx = len(e.vars)
			e.vars[t.ID] = idx
		}
		obj := map[string]any{"var": int64(idx)}
		if !t.IsAnonymous() {
			obj["name"] = t.Name
		}
		return obj, nil
	case Atom:
		return map[string]any{"atom": string(t)}, nil
	case Integer:
		return map[string]any{"int": int64(t)}, nil
	case Real:
		return map[string]any{"real": strconv.FormatFloat(float64(t), 'g', -1, 64)}, nil
	case *Struct:
		args := make([]any, len(t.Args))
		for i, a := range t.Args {
			av, err := e.termValue(a)
			if err != nil {
				return nil, err
			}
			args[i] = av
		}
		return map[string]any{"functor": t.Functor, "args": args}, nil
	case *Clause:
		obj := map[string]any{}
		if t.Head != nil {
			hv, err := e.termValue(t.Head)
			if err != nil {
				return nil, err
			}
			obj["head"] = hv
		}
		bv, err := e.termValue(t.Body)
		if err != nil {
			return nil, err
		}
		obj["body"] = bv
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported term type %T", t)
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case string:
		b, err := marshalCanonicalString(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range sortedKeys(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported canonical value %T", v)
	}
	return nil
}

// sortedKeys orders keys by UTF-16 code units as RFC 8785 requires.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
	})
	return keys
}

// marshalCanonicalString NFC-normalises s and escapes only what JSON
// requires: control characters, backslash and quote.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})

	// encoding/json escapes U+2028 and U+2029 for JavaScript; canonical JSON
	// keeps them literal. An escape is real only when preceded by an even
	// number of backslashes.
	if !bytes.Contains(out, []byte(`\u202`)) {
		return out, nil
	}
	var res []byte
	for i := 0; i < len(out); i++ {
		if i+6 <= len(out) && out[i] == '\\' && bytes.HasPrefix(out[i:], []byte(`\u202`)) && (out[i+5] == '8' || out[i+5] == '9') {
			n := 0
			for j := len(res) - 1; j >= 0 && res[j] == '\\'; j-- {
				n++
			}
			if n%2 == 0 {
				if out[i+5] == '8' {
					res = append(res, "\u2028"...)
				} else {
					res = append(res, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		res = append(res, out[i])
	}
	return res, nil
}

// UnmarshalTerm decodes a term produced by MarshalCanonical. Variables with
// the same index decode to the same fresh variable.
func UnmarshalTerm(data []byte) (Term, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode term: %w", err)
	}
	d := &canonicalDecoder{vars: map[int64]Var{}}
	return d.term(raw)
}

// UnmarshalClause decodes a clause produced by MarshalCanonical.
func UnmarshalClause(data []byte) (*Clause, error) {
	t, err := UnmarshalTerm(data)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Clause)
	if !ok {
		return nil, fmt.Errorf("decode clause: got %T", t)
	}
	return c, nil
}

type canonicalDecoder struct {
	vars map[int64]Var
}

func (d *canonicalDecoder) term(raw any) (Term, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode term: expected object, got %T", raw)
	}
	if a, ok := obj["atom"].(string); ok {
		return Atom(a), nil
	}
	if n, ok := obj["int"].(json.Number); ok {
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("decode int: %w", err)
		}
		return Integer(i), nil
	}
	if s, ok := obj["real"].(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("decode real: %w", err)
		}
		return Real(f), nil
	}
	if n, ok := obj["var"].(json.Number); ok {
		idx, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("decode var: %w", err)
		}
		if v, ok := d.vars[idx]; ok {
			return v, nil
		}
		name, _ := obj["name"].(string)
		v := NewVar(name)
		d.vars[idx] = v
		return v, nil
	}
	if f, ok := obj["functor"].(string); ok {
		rawArgs, _ := obj["args"].([]any)
		args := make([]Term, len(rawArgs))
		for i, ra := range rawArgs {
			a, err := d.term(ra)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return NewStruct(f, args...), nil
	}
	if rb, ok := obj["body"]; ok {
		body, err := d.term(rb)
		if err != nil {
			return nil, err
		}
		c := &Clause{Body: body}
		if rh, ok := obj["head"]; ok {
			if c.Head, err = d.term(rh); err != nil {
				return nil, err
			}
		}
		return c, nil
	}
	return nil, fmt.Errorf("decode term: unrecognised object")
}
