package traj

import (
	"fmt"

	"gopkg.in/yaml.v2"
	yaml3 "gopkg.in/yaml.v3"
)

// ParseYAML parses a YAML trajectory document.  Mapping order is
// preserved.  Scalars follow YAML 1.2, so keys like n, y and off stay
// strings.
func ParseYAML(src []byte) (Value, error) {
	var doc yaml3.Node
	if err := yaml3.Unmarshal(src, &doc); err != nil {
		return Missing, err
	}
	if doc.Kind == 0 {
		return NewObject(&Object{}), nil
	}
	return fromYAML(&doc)
}

func fromYAML(n *yaml3.Node) (Value, error) {
	switch n.Kind {
	case yaml3.DocumentNode:
		if len(n.Content) == 0 {
			return Null, nil
		}
		return fromYAML(n.Content[0])
	case yaml3.AliasNode:
		return fromYAML(n.Alias)
	case yaml3.MappingNode:
		o := &Object{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml3.ScalarNode {
				return Missing, &StructureError{
					Where: fmt.Sprintf("line %d", k.Line),
					Msg:   "mapping key isn't a scalar",
				}
			}
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return Missing, err
			}
			o.set(k.Value, v)
		}
		return NewObject(o), nil
	case yaml3.SequenceNode:
		acc := make([]Value, len(n.Content))
		for i, y := range n.Content {
			v, err := fromYAML(y)
			if err != nil {
				return Missing, err
			}
			acc[i] = v
		}
		return NewList(acc...), nil
	case yaml3.ScalarNode:
		if n.ShortTag() == "!!timestamp" {
			return NewString(n.Value), nil
		}
		var x interface{}
		if err := n.Decode(&x); err != nil {
			return Missing, err
		}
		return FromInterface(x)
	}
	return Missing, &StructureError{
		Where: fmt.Sprintf("line %d", n.Line),
		Msg:   "unsupported YAML node",
	}
}

// MarshalYAML renders the Value with object fields in order.
func (v Value) MarshalYAML() (interface{}, error) {
	return toYAML(v), nil
}

func toYAML(v Value) interface{} {
	switch v.Kind() {
	case ListKind:
		xs, _ := v.List()
		acc := make([]interface{}, len(xs))
		for i, x := range xs {
			acc[i] = toYAML(x)
		}
		return acc
	case ObjectKind:
		o, _ := v.Object()
		acc := make(yaml.MapSlice, 0, o.Len())
		for _, name := range o.Names() {
			x, _ := o.Get(name)
			acc = append(acc, yaml.MapItem{
				Key:   name,
				Value: toYAML(x),
			})
		}
		return acc
	}
	return v.Interface()
}
