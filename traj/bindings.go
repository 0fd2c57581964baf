package traj

// Bindings is a map from variable names to their values.
type Bindings map[string]Value

// Point is one fully-resolved Bindings snapshot, which corresponds to
// a single physical measurement step.
type Point = Bindings

func NewBindings() Bindings {
	return make(Bindings, 32)
}

// Extend adds the binding; modifies and returns the Bindings.
func (bs Bindings) Extend(p string, v Value) Bindings {
	bs[p] = v
	return bs
}

// Copy makes a shallow copy of the Bindings.
//
// Values are immutable, so a shallow copy is an independent
// snapshot.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Names returns the sorted variable names.
func (bs Bindings) Names() []string {
	return sortedKeys(bs)
}

// Interface converts the Bindings into plain Go data.
func (bs Bindings) Interface() map[string]interface{} {
	acc := make(map[string]interface{}, len(bs))
	for k, v := range bs {
		acc[k] = v.Interface()
	}
	return acc
}

// Has reports whether the name is bound.
func (bs Bindings) Has(p string) bool {
	_, have := bs[p]
	return have
}

// Flatten expands object values one level into dotted names
// ("counter.timePreset").  Other values keep their names.
func (bs Bindings) Flatten() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		if o, is := v.Object(); is {
			for _, field := range o.names {
				acc[k+"."+field] = o.fields[field]
			}
			continue
		}
		acc[k] = v
	}
	return acc
}
