package traj

import (
	"strconv"
)

// ListSpec is a parsed list specification.
type ListSpec struct {
	// Values are literals or expressions.  They are evaluated
	// when consumed.
	Values []Value

	Cyclic bool

	// Spec is the specification as written.
	Spec Value
}

// ParseListSpec checks a {"value": [...], "cyclic": bool} list
// specification.
func ParseListSpec(spec Value) (*ListSpec, error) {
	bad := func(msg string) error {
		return &SpecError{
			What: "list",
			Spec: spec,
			Msg:  msg,
		}
	}

	o, is := spec.Object()
	if !is {
		return nil, bad("bad specification")
	}
	l := &ListSpec{
		Spec: spec,
	}
	for _, name := range o.Names() {
		v, _ := o.Get(name)
		switch name {
		case "value":
			vs, is := v.List()
			if !is {
				return nil, bad("value isn't a list")
			}
			l.Values = vs
		case "cyclic":
			b, is := v.Bool()
			if !is && v.Kind() != NullKind {
				return nil, bad("cyclic isn't a boolean")
			}
			l.Cyclic = b
		default:
			return nil, bad("unknown key " + strconv.Quote(name))
		}
	}
	if len(l.Values) == 0 {
		return nil, bad("list has no length")
	}
	return l, nil
}

// LiteralList makes a non-cyclic ListSpec from a bare array.
func LiteralList(spec Value) (*ListSpec, error) {
	vs, is := spec.List()
	if !is || len(vs) == 0 {
		return nil, &SpecError{
			What: "list",
			Spec: spec,
			Msg:  "list has no length",
		}
	}
	return &ListSpec{
		Values: vs,
		Spec:   spec,
	}, nil
}

// At returns the unevaluated element for step i of a loop driven by
// another variable: cyclic lists wrap around and others repeat their
// last element.
func (l *ListSpec) At(i int) Value {
	n := len(l.Values)
	if l.Cyclic {
		return l.Values[i%n]
	}
	if n <= i {
		i = n - 1
	}
	return l.Values[i]
}

type listGen struct {
	spec  *ListSpec
	first bool
	i     int
}

func (g *listGen) Len() int {
	if g.first {
		return len(g.spec.Values)
	}
	return -1
}

func (g *listGen) Next(c *Context) (Value, error) {
	var x Value
	if g.first {
		if len(g.spec.Values) <= g.i {
			return Missing, ErrExhausted
		}
		x = g.spec.Values[g.i]
	} else {
		x = g.spec.At(g.i)
	}
	g.i++
	return c.Eval(x)
}
