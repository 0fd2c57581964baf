package traj

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// Parse parses a trajectory document written in relaxed JSON:
// comments, unquoted keys, single-quoted strings, and trailing commas
// are all fine.  Object key order is preserved.
//
// The document is parsed as an ECMAScript object literal.  Anything
// other than literals (calls, identifiers, operators other than
// unary signs) is an error.
func Parse(src []byte) (Value, error) {
	p, err := parser.ParseFile(nil, "", "("+string(src)+"\n)", 0)
	if err != nil {
		return Missing, err
	}
	if len(p.Body) != 1 {
		return Missing, fmt.Errorf("expected one document but found %d statements", len(p.Body))
	}
	s, is := p.Body[0].(*ast.ExpressionStatement)
	if !is {
		return Missing, fmt.Errorf("document isn't an expression (%T)", p.Body[0])
	}
	return literal(s.Expression)
}

func literal(x ast.Expression) (Value, error) {
	switch vv := x.(type) {
	case *ast.SequenceExpression:
		if len(vv.Sequence) == 1 {
			return literal(vv.Sequence[0])
		}
	case *ast.NullLiteral:
		return Null, nil
	case *ast.BooleanLiteral:
		return NewBool(vv.Value), nil
	case *ast.StringLiteral:
		return NewString(vv.Value.String()), nil
	case *ast.NumberLiteral:
		switch n := vv.Value.(type) {
		case int64:
			return NewInt(n), nil
		case float64:
			return NewFloat(n), nil
		}
		return FromInterface(vv.Value)
	case *ast.UnaryExpression:
		if vv.Postfix {
			break
		}
		v, err := literal(vv.Operand)
		if err != nil {
			return Missing, err
		}
		switch vv.Operator {
		case token.PLUS:
			if _, is := v.Number(); is {
				return v, nil
			}
		case token.MINUS:
			if i, is := v.Int(); is {
				return NewInt(-i), nil
			}
			if f, is := v.Number(); is {
				return NewFloat(-f), nil
			}
		}
	case *ast.ArrayLiteral:
		acc := make([]Value, 0, len(vv.Value))
		for _, y := range vv.Value {
			if y == nil {
				return Missing, fmt.Errorf("hole in array at offset %d", vv.Idx0())
			}
			v, err := literal(y)
			if err != nil {
				return Missing, err
			}
			acc = append(acc, v)
		}
		return NewList(acc...), nil
	case *ast.ObjectLiteral:
		o := &Object{}
		for _, prop := range vv.Value {
			keyed, is := prop.(*ast.PropertyKeyed)
			if !is || keyed.Computed {
				return Missing, fmt.Errorf("unsupported property at offset %d", prop.Idx0())
			}
			k, err := literal(keyed.Key)
			if err != nil {
				return Missing, err
			}
			var name string
			if s, is := k.Str(); is {
				name = s
			} else {
				name = k.String()
			}
			v, err := literal(keyed.Value)
			if err != nil {
				return Missing, err
			}
			o.set(name, v)
		}
		return NewObject(o), nil
	}
	return Missing, fmt.Errorf("unsupported syntax %T at offset %d", x, x.Idx0())
}

// IsYAML reports whether the filename looks like a YAML document.
func IsYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ParseFile parses a document from a file.  YAML is used for .yaml
// and .yml files, relaxed JSON otherwise.
func ParseFile(filename string) (Value, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return Missing, err
	}
	if IsYAML(filename) {
		return ParseYAML(bs)
	}
	return Parse(bytes.TrimPrefix(bs, []byte("\xef\xbb\xbf")))
}

// Load parses and compiles a trajectory from a file.
func Load(filename string) (*Trajectory, error) {
	doc, err := ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return Compile(doc, filename)
}
