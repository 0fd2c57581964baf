package traj

import (
	"strconv"
)

// VaryKind says how a vary entry produces its values.
type VaryKind int

const (
	// RangeVary is {"range": ...}.
	RangeVary VaryKind = iota

	// LogRangeVary is {"logrange": ...}.
	LogRangeVary

	// ListVary is {"list": {"value": [...], "cyclic": ...}}.
	ListVary

	// LiteralListVary is a bare array.  It acts as a non-cyclic
	// list.
	LiteralListVary

	// ScalarVary is any other literal or an expression.
	ScalarVary

	// ObjectVary is an object without a generator key.  Each field
	// is evaluated at every step and assigned as "name.field".
	ObjectVary
)

var varyKindNames = []string{"range", "logrange", "list", "literal list", "scalar", "object"}

func (k VaryKind) String() string {
	if 0 <= int(k) && int(k) < len(varyKindNames) {
		return varyKindNames[k]
	}
	return "vary(" + strconv.Itoa(int(k)) + ")"
}

// Vary is one (name, generator spec) entry in a loop body.
type Vary struct {
	Name string
	Kind VaryKind

	// Spec is the generator specification as written.
	Spec Value

	// Range is set for RangeVary and LogRangeVary.
	Range *RangeSpec

	// List is set for ListVary and LiteralListVary.
	List *ListSpec

	// Fields is set for ObjectVary.
	Fields *Object
}

// Generator produces the values of one vary entry during one pass
// through a loop body.
type Generator interface {
	// Len is the number of values the Generator will produce
	// before ErrExhausted, or -1 if it never runs out.
	Len() int

	// Next returns the next value, evaluated against the given
	// Context if necessary.
	Next(c *Context) (Value, error)
}

// Generator makes a fresh Generator for a pass through the loop.
//
// Ranges are realized immediately against the given Context.  When
// first is false, loopLen is the length of the first Generator in
// the loop body.
func (v *Vary) Generator(c *Context, first bool, loopLen int) (Generator, error) {
	switch v.Kind {
	case RangeVary, LogRangeVary:
		if first {
			loopLen = 0
		}
		vs, err := v.Range.Realize(c, loopLen)
		if err != nil {
			return nil, err
		}
		return &seqGen{vs: vs}, nil
	case ListVary, LiteralListVary:
		return &listGen{
			spec:  v.List,
			first: first,
		}, nil
	case ScalarVary:
		return &scalarGen{
			x:     v.Spec,
			first: first,
		}, nil
	case ObjectVary:
		return &objectGen{
			fields: v.Fields,
			first:  first,
		}, nil
	}
	return nil, &StructureError{
		Where: v.Name,
		Msg:   "unknown vary kind " + v.Kind.String(),
	}
}

// Bind assigns a generated value.  An ObjectVary assigns each field
// separately so that it merges with the existing object.
func (v *Vary) Bind(c *Context, x Value) {
	if v.Kind == ObjectVary {
		o, _ := x.Object()
		for _, field := range o.Names() {
			y, _ := o.Get(field)
			c.Assign(v.Name+Separator+field, y)
		}
		return
	}
	c.Assign(v.Name, x)
}

// seqGen is a realized range.
type seqGen struct {
	vs []Value
	i  int
}

func (g *seqGen) Len() int {
	return len(g.vs)
}

func (g *seqGen) Next(c *Context) (Value, error) {
	if len(g.vs) <= g.i {
		return Missing, ErrExhausted
	}
	v := g.vs[g.i]
	g.i++
	return v, nil
}

// scalarGen gives one value when it drives the loop and the same
// (re-evaluated) value forever otherwise.
type scalarGen struct {
	x     Value
	first bool
	done  bool
}

func (g *scalarGen) Len() int {
	if g.first {
		return 1
	}
	return -1
}

func (g *scalarGen) Next(c *Context) (Value, error) {
	if g.first {
		if g.done {
			return Missing, ErrExhausted
		}
		g.done = true
	}
	return c.Eval(g.x)
}

type objectGen struct {
	fields *Object
	first  bool
	done   bool
}

func (g *objectGen) Len() int {
	if g.first {
		return 1
	}
	return -1
}

func (g *objectGen) Next(c *Context) (Value, error) {
	if g.first {
		if g.done {
			return Missing, ErrExhausted
		}
		g.done = true
	}
	return evalFields(c, g.fields)
}

// evalFields evaluates each field of an object in order.
func evalFields(c *Context, o *Object) (Value, error) {
	acc := &Object{}
	for _, field := range o.Names() {
		x, _ := o.Get(field)
		v, err := c.Eval(x)
		if err != nil {
			return Missing, err
		}
		acc.set(field, v)
	}
	return NewObject(acc), nil
}
