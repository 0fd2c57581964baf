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
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Keywords that hold filename patterns.  These are stored
// unevaluated and evaluated at every point.
var patternKeywords = []string{"fileGroup", "filePrefix", "fileName", "entryName"}

// DefaultPatterns are the filename patterns used when a trajectory
// doesn't give its own.
var DefaultPatterns = map[string]string{
	"fileGroup":  "''",
	"filePrefix": "trajName",
	"fileName":   "sprintf('%s%d',filePrefix,fileNum)",
	"entryName":  "''",
}

// Trajectory is a compiled trajectory document.
type Trajectory struct {
	// Filename is where the document came from.  It provides the
	// default trajName.
	Filename string

	// Directives are the top-level entries in document order.
	Directives []*Directive

	// Doc is the document as parsed.
	Doc Value
}

// Directive is one top-level entry of a trajectory document.
type Directive struct {
	Keyword string
	Value   Value

	// Loops is set for the "loops" directive.
	Loops []*Loop
}

// Loop is a loop body: lock-step vary entries and optional nested
// loops.
type Loop struct {
	Vary  []*Vary
	Loops []*Loop

	// Where locates the loop in the document ("loops[0].loops[1]").
	Where string
}

// DefaultName returns the trajectory name used when the document
// doesn't give one: the file's base name without extension.
func (t *Trajectory) DefaultName() string {
	if t.Filename == "" {
		return "traj"
	}
	base := filepath.Base(t.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Loops returns every loop directive's loops in order.
func (t *Trajectory) Loops() []*Loop {
	var acc []*Loop
	for _, d := range t.Directives {
		acc = append(acc, d.Loops...)
	}
	return acc
}

// Compile checks the structure of a parsed trajectory document and
// parses all of its generator specifications.
//
// A document that doesn't compile never produces any points.
func Compile(doc Value, filename string) (*Trajectory, error) {
	o, is := doc.Object()
	if !is {
		return nil, &StructureError{
			Msg: "trajectory isn't an object: " + doc.String(),
		}
	}

	t := &Trajectory{
		Filename:   filename,
		Directives: make([]*Directive, 0, o.Len()),
		Doc:        doc,
	}

	for _, k := range o.Names() {
		v, _ := o.Get(k)
		d := &Directive{
			Keyword: k,
			Value:   v,
		}
		switch k {
		case "fileGroup", "filePrefix", "fileName", "entryName":
		case "trajName", "descr", "neverWrite", "alwaysWrite":
		case "init":
			if _, is := v.Object(); !is {
				return nil, &StructureError{
					Where: k,
					Msg:   "init isn't an object",
				}
			}
		case "loops":
			loops, err := compileLoops(v, "loops")
			if err != nil {
				return nil, err
			}
			d.Loops = loops
		default:
			return nil, &StructureError{
				Where: k,
				Msg:   "unknown keyword " + strconv.Quote(k),
			}
		}
		t.Directives = append(t.Directives, d)
	}

	return t, nil
}

func compileLoops(v Value, where string) ([]*Loop, error) {
	xs, is := v.List()
	if !is {
		return nil, &StructureError{
			Where: where,
			Msg:   "loops isn't a list",
		}
	}
	acc := make([]*Loop, 0, len(xs))
	for i, x := range xs {
		l, err := compileLoop(x, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		acc = append(acc, l)
	}
	return acc, nil
}

func compileLoop(v Value, where string) (*Loop, error) {
	o, is := v.Object()
	if !is {
		return nil, &StructureError{
			Where: where,
			Msg:   "loop isn't an object",
		}
	}
	l := &Loop{
		Where: where,
	}
	for _, k := range o.Names() {
		x, _ := o.Get(k)
		switch k {
		case "vary":
			vs, err := compileVary(x, where+".vary")
			if err != nil {
				return nil, err
			}
			l.Vary = vs
		case "loops":
			ls, err := compileLoops(x, where+".loops")
			if err != nil {
				return nil, err
			}
			l.Loops = ls
		default:
			return nil, &StructureError{
				Where: where,
				Msg:   "unknown key " + strconv.Quote(k) + " in loop",
			}
		}
	}
	if len(l.Vary) == 0 {
		return nil, &StructureError{
			Where: where,
			Msg:   "loop has nothing to vary",
		}
	}
	return l, nil
}

// compileVary accepts an object, whose fields are the vary entries
// in order, or a list of [name, spec] pairs.
func compileVary(v Value, where string) ([]*Vary, error) {
	var names []string
	var specs []Value

	if o, is := v.Object(); is {
		for _, name := range o.Names() {
			x, _ := o.Get(name)
			names = append(names, name)
			specs = append(specs, x)
		}
	} else if pairs, is := v.List(); is {
		for i, pair := range pairs {
			xs, is := pair.List()
			if !is || len(xs) != 2 {
				return nil, &StructureError{
					Where: fmt.Sprintf("%s[%d]", where, i),
					Msg:   "vary entry isn't a [name, spec] pair",
				}
			}
			name, is := xs[0].Str()
			if !is {
				return nil, &StructureError{
					Where: fmt.Sprintf("%s[%d]", where, i),
					Msg:   "vary name isn't a string",
				}
			}
			names = append(names, name)
			specs = append(specs, xs[1])
		}
	} else {
		return nil, &StructureError{
			Where: where,
			Msg:   "vary isn't an object or a list of pairs",
		}
	}

	acc := make([]*Vary, 0, len(names))
	for i, name := range names {
		vary, err := ParseVary(name, specs[i])
		if err != nil {
			if se, is := err.(*StructureError); is && se.Where == "" {
				se.Where = where + "." + name
			}
			return nil, err
		}
		acc = append(acc, vary)
	}
	return acc, nil
}

// ParseVary classifies a generator specification.
func ParseVary(name string, spec Value) (*Vary, error) {
	if name == "" {
		return nil, &StructureError{
			Msg: "empty vary name",
		}
	}
	v := &Vary{
		Name: name,
		Spec: spec,
	}

	switch spec.Kind() {
	case ListKind:
		l, err := LiteralList(spec)
		if err != nil {
			return nil, err
		}
		v.Kind = LiteralListVary
		v.List = l
		return v, nil
	case ObjectKind:
	default:
		v.Kind = ScalarVary
		return v, nil
	}

	o, _ := spec.Object()
	var (
		gen string
		x   Value
	)
	for _, k := range []string{"range", "logrange", "list"} {
		if y, have := o.Get(k); have {
			gen, x = k, y
			break
		}
	}
	if gen == "" {
		v.Kind = ObjectVary
		v.Fields = o
		return v, nil
	}
	if o.Len() != 1 {
		return nil, &StructureError{
			Msg: "extra keys with " + strconv.Quote(gen) + ": " + spec.String(),
		}
	}

	var err error
	switch gen {
	case "range":
		v.Kind = RangeVary
		v.Range, err = ParseRangeSpec(x, false)
	case "logrange":
		v.Kind = LogRangeVary
		v.Range, err = ParseRangeSpec(x, true)
	case "list":
		v.Kind = ListVary
		v.List, err = ParseListSpec(x)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
