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
	"context"
	"errors"
	"fmt"
)

// Counters are the initial values of the loop counters.
type Counters struct {
	FileNum     int64 `json:"fileNum"`
	InstFileNum int64 `json:"instFileNum"`
	ExpPointNum int64 `json:"expPointNum"`
	PointNum    int64 `json:"pointNum"`
}

// DryrunCounters are pretend counter values for a run that isn't
// connected to an instrument.
var DryrunCounters = Counters{
	FileNum:     42,
	InstFileNum: 142,
	ExpPointNum: 1042,
	PointNum:    0,
}

// Options control a Run.
type Options struct {
	// Interpreter evaluates expressions.  If nil,
	// DefaultInterpreters[DefaultInterpreterName] is used.
	Interpreter Interpreter

	// Counters seed the loop counters.  If nil, DryrunCounters
	// are used.
	Counters *Counters

	// Verbose logs evaluations and points.
	Verbose bool
}

// Run reports what a Run found besides the points themselves.
type Run struct {
	TrajName    string
	Descr       string
	NeverWrite  []string
	AlwaysWrite []string

	// Constants is the snapshot taken just after init.
	Constants Bindings

	// Count is the number of points emitted.
	Count int
}

// Result is a Run with all of its points.
type Result struct {
	Run
	Points []Point
}

func (o *Options) interpreter() (Interpreter, error) {
	if o != nil && o.Interpreter != nil {
		return o.Interpreter, nil
	}
	i, have := DefaultInterpreters[DefaultInterpreterName]
	if !have {
		return nil, errors.New("no interpreter named " + DefaultInterpreterName)
	}
	return i, nil
}

func (o *Options) counters() Counters {
	if o != nil && o.Counters != nil {
		return *o.Counters
	}
	return DryrunCounters
}

// Run evaluates the trajectory and calls emit with each point in
// order.
//
// Directives are processed in document order.  Filename patterns are
// stored for later.  trajName, descr, neverWrite, and alwaysWrite are
// evaluated.  The init entries are assigned in order, and then the
// Constants are captured.  Each loops directive seeds the counters
// and walks its loops.
//
// Any error aborts the whole run.
func (t *Trajectory) Run(ctx context.Context, opts *Options, emit func(Point) error) (*Run, error) {
	interp, err := opts.interpreter()
	if err != nil {
		return nil, err
	}

	c := NewContext(ctx, interp)
	if opts != nil {
		c.Verbose = opts.Verbose
	}

	c.Assign("trajName", NewString(t.DefaultName()))
	c.Assign("descr", NewString(""))
	c.Assign("alwaysWrite", NewList())
	c.Assign("neverWrite", NewList())

	r := &Run{
		Constants: c.Snapshot(),
	}

	for _, d := range t.Directives {
		switch d.Keyword {
		case "fileGroup", "filePrefix", "fileName", "entryName":
			c.SetPattern(d.Keyword, d.Value)

		case "trajName", "descr", "neverWrite", "alwaysWrite":
			v, err := c.Eval(d.Value)
			if err != nil {
				return nil, err
			}
			c.Assign(d.Keyword, v)

		case "init":
			if err := c.init(d.Value); err != nil {
				return nil, err
			}
			r.Constants = c.Snapshot()

		case "loops":
			cs := opts.counters()
			c.Assign("fileNum", NewInt(cs.FileNum))
			c.Assign("instFileNum", NewInt(cs.InstFileNum))
			c.Assign("expPointNum", NewInt(cs.ExpPointNum))
			c.Assign("pointNum", NewInt(cs.PointNum))

			f := func(leaf *Context) error {
				p := leaf.Snapshot()
				r.Count++
				leaf.logf("point %d %s", r.Count, p["fileName"])
				if emit == nil {
					return nil
				}
				return emit(p)
			}
			if err := runLoops(d.Loops, c, f); err != nil {
				return nil, err
			}

		default:
			return nil, &StructureError{
				Where: d.Keyword,
				Msg:   "unknown keyword",
			}
		}
	}

	if r.TrajName, err = stringBinding(c, "trajName"); err != nil {
		return nil, err
	}
	if r.Descr, err = stringBinding(c, "descr"); err != nil {
		return nil, err
	}
	if r.NeverWrite, err = namesBinding(c, "neverWrite"); err != nil {
		return nil, err
	}
	if r.AlwaysWrite, err = namesBinding(c, "alwaysWrite"); err != nil {
		return nil, err
	}

	return r, nil
}

// Dryrun runs the trajectory and collects all of its points.
func (t *Trajectory) Dryrun(ctx context.Context, opts *Options) (*Result, error) {
	acc := make([]Point, 0, 64)
	r, err := t.Run(ctx, opts, func(p Point) error {
		acc = append(acc, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Run:    *r,
		Points: acc,
	}, nil
}

// init assigns the init entries in order.  An object value becomes
// an object whose fields are each evaluated once.
func (c *Context) init(x Value) error {
	o, is := x.Object()
	if !is {
		return &StructureError{
			Where: "init",
			Msg:   "init isn't an object",
		}
	}
	for _, name := range o.Names() {
		y, _ := o.Get(name)
		var (
			v   Value
			err error
		)
		if fields, is := y.Object(); is {
			v, err = evalFields(c, fields)
		} else {
			v, err = c.Eval(y)
		}
		if err != nil {
			return err
		}
		c.Assign(name, v)
	}
	return nil
}

func stringBinding(c *Context, name string) (string, error) {
	v, _ := c.Get(name)
	if s, is := v.Str(); is {
		return s, nil
	}
	if v.IsMissing() || v.Kind() == NullKind {
		return "", nil
	}
	return v.String(), nil
}

func namesBinding(c *Context, name string) ([]string, error) {
	v, _ := c.Get(name)
	switch v.Kind() {
	case UndefinedKind, NullKind:
		return nil, nil
	case StringKind:
		s, _ := v.Str()
		return []string{s}, nil
	}
	xs, is := v.List()
	if !is {
		return nil, &StructureError{
			Where: name,
			Msg:   fmt.Sprintf("%s isn't a list of names: %s", name, v),
		}
	}
	acc := make([]string, 0, len(xs))
	for _, x := range xs {
		s, is := x.Str()
		if !is {
			return nil, &StructureError{
				Where: name,
				Msg:   fmt.Sprintf("%s has a non-string name: %s", name, x),
			}
		}
		acc = append(acc, s)
	}
	return acc, nil
}
