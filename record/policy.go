package record

import (
	"strings"

	"github.com/reflectometry/scattio/traj"
)

// Policy selects the fields of a point that are written.
//
// A flattened field is written when it isn't a constant or when its
// value differs from the constant's.  A name in AlwaysWrite is always
// written when present, and a name in NeverWrite is never written.
// Names match either a dotted field or its top-level name.
type Policy struct {
	constants traj.Bindings
	always    map[string]bool
	never     map[string]bool
}

// NewPolicy makes the Policy for a Run.
func NewPolicy(r *traj.Run) *Policy {
	return &Policy{
		constants: r.Constants.Flatten(),
		always:    set(r.AlwaysWrite),
		never:     set(r.NeverWrite),
	}
}

func set(names []string) map[string]bool {
	acc := make(map[string]bool, len(names))
	for _, name := range names {
		acc[name] = true
	}
	return acc
}

// Keep reports whether the flattened field should be written.
func (pol *Policy) Keep(name string, v traj.Value) bool {
	top := name
	if i := strings.Index(name, traj.Separator); 0 < i {
		top = name[:i]
	}
	if pol.never[name] || pol.never[top] {
		return false
	}
	if pol.always[name] || pol.always[top] {
		return true
	}
	c, have := pol.constants[name]
	return !have || !c.Equal(v)
}

// Fields returns the flattened fields of p that should be written.
func (pol *Policy) Fields(p traj.Point) traj.Bindings {
	acc := traj.NewBindings()
	for name, v := range traj.Bindings(p).Flatten() {
		if pol.Keep(name, v) {
			acc[name] = v
		}
	}
	return acc
}

// Names returns the sorted names of the fields of p that should be
// written.
func (pol *Policy) Names(p traj.Point) []string {
	return pol.Fields(p).Names()
}
