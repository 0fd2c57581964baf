/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package traj

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the tag of a Value.
type Kind int

const (
	// UndefinedKind is the zero Kind.  A Value of this kind is
	// the explicit missing marker in a Table.
	UndefinedKind Kind = iota
	NullKind
	BoolKind
	IntKind
	FloatKind
	StringKind
	ListKind
	ObjectKind
)

var kindNames = []string{"undefined", "null", "bool", "int", "float", "string", "list", "object"}

func (k Kind) String() string {
	if 0 <= int(k) && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a small tagged value: a number, a string, a boolean, an
// ordered sequence, or an ordered object.
//
// Values are never modified after construction.  A Value can be
// shared freely between Bindings and Points.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	l    []Value
	o    *Object
}

var (
	// Missing marks a cell that has no value.
	Missing = Value{}

	// Null is the JSON null.
	Null = Value{kind: NullKind}
)

func NewBool(b bool) Value      { return Value{kind: BoolKind, b: b} }
func NewInt(i int64) Value      { return Value{kind: IntKind, i: i} }
func NewFloat(f float64) Value  { return Value{kind: FloatKind, f: f} }
func NewString(s string) Value  { return Value{kind: StringKind, s: s} }
func NewList(vs ...Value) Value { return Value{kind: ListKind, l: vs} }
func NewObject(o *Object) Value { return Value{kind: ObjectKind, o: o} }

// Kind returns the tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether this Value is the Missing marker.
func (v Value) IsMissing() bool {
	return v.kind == UndefinedKind
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == BoolKind
}

// Int returns the integer for an IntKind value.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == IntKind
}

// Number returns the numeric value of an int or a float.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case IntKind:
		return float64(v.i), true
	case FloatKind:
		return v.f, true
	}
	return 0, false
}

func (v Value) Str() (string, bool) {
	return v.s, v.kind == StringKind
}

func (v Value) List() ([]Value, bool) {
	return v.l, v.kind == ListKind
}

func (v Value) Object() (*Object, bool) {
	return v.o, v.kind == ObjectKind && v.o != nil
}

// Interface converts the Value into plain Go data: nil, bool, int64,
// float64, string, []interface{}, or map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case BoolKind:
		return v.b
	case IntKind:
		return v.i
	case FloatKind:
		return v.f
	case StringKind:
		return v.s
	case ListKind:
		acc := make([]interface{}, len(v.l))
		for i, x := range v.l {
			acc[i] = x.Interface()
		}
		return acc
	case ObjectKind:
		if v.o == nil {
			return map[string]interface{}{}
		}
		acc := make(map[string]interface{}, len(v.o.names))
		for _, name := range v.o.names {
			acc[name] = v.o.fields[name].Interface()
		}
		return acc
	}
	return nil
}

// FromInterface converts plain Go data into a Value.
//
// Map keys are sorted since Go maps carry no order.
func FromInterface(x interface{}) (Value, error) {
	switch vv := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return vv, nil
	case *Object:
		return NewObject(vv), nil
	case bool:
		return NewBool(vv), nil
	case int:
		return NewInt(int64(vv)), nil
	case int8:
		return NewInt(int64(vv)), nil
	case int16:
		return NewInt(int64(vv)), nil
	case int32:
		return NewInt(int64(vv)), nil
	case int64:
		return NewInt(vv), nil
	case uint:
		return NewInt(int64(vv)), nil
	case uint8:
		return NewInt(int64(vv)), nil
	case uint16:
		return NewInt(int64(vv)), nil
	case uint32:
		return NewInt(int64(vv)), nil
	case uint64:
		return NewInt(int64(vv)), nil
	case float32:
		return NewFloat(float64(vv)), nil
	case float64:
		return NewFloat(vv), nil
	case json.Number:
		return numberValue(string(vv))
	case string:
		return NewString(vv), nil
	case []Value:
		return NewList(vv...), nil
	case []interface{}:
		acc := make([]Value, len(vv))
		for i, y := range vv {
			v, err := FromInterface(y)
			if err != nil {
				return Missing, err
			}
			acc[i] = v
		}
		return NewList(acc...), nil
	case []string:
		acc := make([]Value, len(vv))
		for i, s := range vv {
			acc[i] = NewString(s)
		}
		return NewList(acc...), nil
	case []float64:
		acc := make([]Value, len(vv))
		for i, f := range vv {
			acc[i] = NewFloat(f)
		}
		return NewList(acc...), nil
	case []int64:
		acc := make([]Value, len(vv))
		for i, n := range vv {
			acc[i] = NewInt(n)
		}
		return NewList(acc...), nil
	case Bindings:
		return FromInterface(map[string]Value(vv))
	case map[string]Value:
		o := &Object{}
		for _, name := range sortedKeys(vv) {
			o.set(name, vv[name])
		}
		return NewObject(o), nil
	case map[string]interface{}:
		names := make([]string, 0, len(vv))
		for name := range vv {
			names = append(names, name)
		}
		sort.Strings(names)
		o := &Object{}
		for _, name := range names {
			v, err := FromInterface(vv[name])
			if err != nil {
				return Missing, err
			}
			o.set(name, v)
		}
		return NewObject(o), nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			s, is := k.(string)
			if !is {
				return Missing, fmt.Errorf("non-string key %#v (%T)", k, k)
			}
			m[s] = y
		}
		return FromInterface(m)
	}
	return Missing, fmt.Errorf("can't make a value from %#v (%T)", x, x)
}

func sortedKeys(m map[string]Value) []string {
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}

// numberValue parses a JSON number, keeping integers integral.
func numberValue(s string) (Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewInt(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing, err
	}
	return NewFloat(f), nil
}

// Equal is deep equality.  Ints and floats compare numerically.
func (v Value) Equal(w Value) bool {
	if x, is := v.Number(); is {
		y, is := w.Number()
		return is && x == y
	}
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case BoolKind:
		return v.b == w.b
	case StringKind:
		return v.s == w.s
	case ListKind:
		if len(v.l) != len(w.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(w.l[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		return v.o.equal(w.o)
	}
	return true
}

// String renders the Value for people: strings are bare at the top
// level and quoted inside lists and objects, which are rendered as
// "[a, b]" and "{k: v}".
func (v Value) String() string {
	if v.kind == StringKind {
		return v.s
	}
	var buf bytes.Buffer
	v.render(&buf)
	return buf.String()
}

func (v Value) render(w *bytes.Buffer) {
	switch v.kind {
	case UndefinedKind:
	case NullKind:
		w.WriteString("null")
	case BoolKind:
		w.WriteString(strconv.FormatBool(v.b))
	case IntKind:
		w.WriteString(strconv.FormatInt(v.i, 10))
	case FloatKind:
		w.WriteString(formatFloat(v.f))
	case StringKind:
		w.WriteString(strconv.Quote(v.s))
	case ListKind:
		w.WriteByte('[')
		for i, x := range v.l {
			if 0 < i {
				w.WriteString(", ")
			}
			x.render(w)
		}
		w.WriteByte(']')
	case ObjectKind:
		w.WriteByte('{')
		if v.o != nil {
			for i, name := range v.o.names {
				if 0 < i {
					w.WriteString(", ")
				}
				w.WriteString(name)
				w.WriteString(": ")
				v.o.fields[name].render(w)
			}
		}
		w.WriteByte('}')
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// MarshalJSON renders the Value as JSON with object fields in order.
//
// NaN and infinities become null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(w *bytes.Buffer) error {
	switch v.kind {
	case UndefinedKind, NullKind:
		w.WriteString("null")
	case BoolKind:
		w.WriteString(strconv.FormatBool(v.b))
	case IntKind:
		w.WriteString(strconv.FormatInt(v.i, 10))
	case FloatKind:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			w.WriteString("null")
		} else {
			w.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	case StringKind:
		js, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		w.Write(js)
	case ListKind:
		w.WriteByte('[')
		for i, x := range v.l {
			if 0 < i {
				w.WriteByte(',')
			}
			if err := x.writeJSON(w); err != nil {
				return err
			}
		}
		w.WriteByte(']')
	case ObjectKind:
		w.WriteByte('{')
		if v.o != nil {
			for i, name := range v.o.names {
				if 0 < i {
					w.WriteByte(',')
				}
				js, err := json.Marshal(name)
				if err != nil {
					return err
				}
				w.Write(js)
				w.WriteByte(':')
				if err := v.o.fields[name].writeJSON(w); err != nil {
					return err
				}
			}
		}
		w.WriteByte('}')
	}
	return nil
}

// UnmarshalJSON parses JSON, keeping object key order and integer
// numbers.
func (v *Value) UnmarshalJSON(bs []byte) error {
	d := json.NewDecoder(bytes.NewReader(bs))
	d.UseNumber()
	x, err := decodeJSON(d)
	if err != nil {
		return err
	}
	*v = x
	return nil
}

func decodeJSON(d *json.Decoder) (Value, error) {
	tok, err := d.Token()
	if err != nil {
		return Missing, err
	}
	switch vv := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(vv), nil
	case json.Number:
		return numberValue(string(vv))
	case string:
		return NewString(vv), nil
	case json.Delim:
		switch vv {
		case '[':
			acc := make([]Value, 0, 8)
			for d.More() {
				x, err := decodeJSON(d)
				if err != nil {
					return Missing, err
				}
				acc = append(acc, x)
			}
			if _, err := d.Token(); err != nil {
				return Missing, err
			}
			return NewList(acc...), nil
		case '{':
			o := &Object{}
			for d.More() {
				tok, err := d.Token()
				if err != nil {
					return Missing, err
				}
				name, is := tok.(string)
				if !is {
					return Missing, fmt.Errorf("bad object key %#v", tok)
				}
				x, err := decodeJSON(d)
				if err != nil {
					return Missing, err
				}
				o.set(name, x)
			}
			if _, err := d.Token(); err != nil {
				return Missing, err
			}
			return NewObject(o), nil
		}
	}
	return Missing, fmt.Errorf("unexpected JSON token %v", tok)
}

// ParseJSON parses strict JSON into a Value.
func ParseJSON(r io.Reader) (Value, error) {
	d := json.NewDecoder(r)
	d.UseNumber()
	return decodeJSON(d)
}

// Object is an ordered set of named fields.
//
// An Object is immutable once built: With returns a modified copy,
// so an Object captured in one Point is never changed by later
// assignments.
type Object struct {
	names  []string
	fields map[string]Value
}

// NewObjectFrom builds an Object from alternating names and values.
func NewObjectFrom(pairs ...interface{}) (*Object, error) {
	o := &Object{}
	for i := 0; i < len(pairs); i += 2 {
		name, is := pairs[i].(string)
		if !is {
			return nil, fmt.Errorf("object field name %#v isn't a string", pairs[i])
		}
		if len(pairs) <= i+1 {
			return nil, fmt.Errorf("odd args to NewObjectFrom")
		}
		v, err := FromInterface(pairs[i+1])
		if err != nil {
			return nil, err
		}
		o.set(name, v)
	}
	return o, nil
}

// set adds or replaces a field in place.  Only for construction.
func (o *Object) set(name string, v Value) {
	if o.fields == nil {
		o.fields = make(map[string]Value, 8)
	}
	if _, have := o.fields[name]; !have {
		o.names = append(o.names, name)
	}
	o.fields[name] = v
}

// Get returns the named field.
func (o *Object) Get(name string) (Value, bool) {
	if o == nil {
		return Missing, false
	}
	v, have := o.fields[name]
	return v, have
}

// Names returns the field names in order.
func (o *Object) Names() []string {
	if o == nil {
		return nil
	}
	acc := make([]string, len(o.names))
	copy(acc, o.names)
	return acc
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.names)
}

// With returns a copy of the Object with the given field set.
func (o *Object) With(name string, v Value) *Object {
	acc := &Object{
		names:  make([]string, 0, o.Len()+1),
		fields: make(map[string]Value, o.Len()+1),
	}
	if o != nil {
		acc.names = append(acc.names, o.names...)
		for k, x := range o.fields {
			acc.fields[k] = x
		}
	}
	acc.set(name, v)
	return acc
}

func (o *Object) equal(p *Object) bool {
	if o.Len() != p.Len() {
		return false
	}
	if o == nil {
		return true
	}
	for name, v := range o.fields {
		w, have := p.fields[name]
		if !have || !v.Equal(w) {
			return false
		}
	}
	return true
}
