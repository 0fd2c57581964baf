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
	"log"
	"strings"
)

// Separator splits a dotted name into an object name and a field
// name.
const Separator = "."

// Names of the counters that flow back out of nested scopes.
var volatiles = []string{"pointNum", "fileNum", "instFileNum", "expPointNum"}

// Context is the binding environment of one trajectory evaluation.
//
// A Context is not safe for concurrent use.  Copy makes a nested
// scope that shares the compile cache and the file bookkeeping with
// its parent.
type Context struct {
	ctx    context.Context
	interp Interpreter
	bs     Bindings
	priv   *private

	// Verbose turns on logging of evaluations.
	Verbose bool
}

// private is the bookkeeping that must never appear in a Point.
type private struct {
	compiled map[string]interface{}

	// patterns are the deferred filename expressions keyed by
	// their directive name (fileGroup, filePrefix, ...).
	patterns map[string]Value

	// groups holds the canonical JSON of every file group seen
	// so far.
	groups map[string]bool
}

// NewContext makes an empty Context that evaluates expressions with
// the given Interpreter.
func NewContext(ctx context.Context, interp Interpreter) *Context {
	return &Context{
		ctx:    ctx,
		interp: interp,
		bs:     NewBindings(),
		priv: &private{
			compiled: make(map[string]interface{}),
			patterns: make(map[string]Value),
			groups:   make(map[string]bool),
		},
	}
}

func (c *Context) logf(format string, args ...interface{}) {
	if c.Verbose {
		log.Printf(format, args...)
	}
}

// Get returns the value bound to the name.
func (c *Context) Get(name string) (Value, bool) {
	v, have := c.bs[name]
	return v, have
}

// Assign binds the name to the value.
//
// A dotted name "obj.field" sets the field on a copy of the object
// bound to "obj" and then rebinds "obj" to that copy.  Objects
// captured by earlier snapshots are never changed.  If "obj" isn't
// bound to an object, it's rebound to a new object.
func (c *Context) Assign(name string, v Value) {
	i := strings.Index(name, Separator)
	if i <= 0 || i == len(name)-1 {
		c.bs[name] = v
		return
	}
	objName, field := name[:i], name[i+1:]
	var o *Object
	if prev, have := c.bs[objName]; have {
		o, _ = prev.Object()
	}
	c.bs[objName] = NewObject(o.With(field, v))
}

// Eval evaluates a string as an expression against the current
// bindings.  Other values are returned as is.
func (c *Context) Eval(x Value) (Value, error) {
	src, is := x.Str()
	if !is {
		return x, nil
	}
	if c.interp == nil {
		return Missing, &ExprError{
			Expr: src,
			Err:  errors.New("no interpreter"),
		}
	}

	compiled, have := c.priv.compiled[src]
	if !have {
		var err error
		if compiled, err = c.interp.Compile(c.ctx, src); err != nil {
			return Missing, exprError(src, err)
		}
		c.priv.compiled[src] = compiled
	}

	v, err := c.interp.Exec(c.ctx, c.bs, src, compiled)
	if err != nil {
		return Missing, exprError(src, err)
	}
	c.logf("eval %s -> %s", src, v)
	return v, nil
}

func exprError(src string, err error) error {
	var (
		unbound *UnboundVariable
		ee      *ExprError
	)
	switch {
	case errors.As(err, &unbound):
		if unbound.Expr == "" {
			unbound.Expr = src
		}
		return unbound
	case errors.As(err, &ee):
		return ee
	}
	return &ExprError{
		Expr: src,
		Err:  err,
	}
}

// Snapshot returns an independent copy of the bindings.
func (c *Context) Snapshot() Point {
	return c.bs.Copy()
}

// Copy makes a nested scope.
func (c *Context) Copy() *Context {
	return &Context{
		ctx:     c.ctx,
		interp:  c.interp,
		bs:      c.bs.Copy(),
		priv:    c.priv,
		Verbose: c.Verbose,
	}
}

// adopt takes the counters from a nested scope.
func (c *Context) adopt(inner *Context) {
	for _, name := range volatiles {
		if v, have := inner.bs[name]; have {
			c.bs[name] = v
		}
	}
}

// incr adds one to an integer counter.
func (c *Context) incr(name string) error {
	v, have := c.bs[name]
	if !have {
		return &UnboundVariable{
			Expr: name + "++",
			Name: name,
		}
	}
	n, is := v.Number()
	if !is {
		return &ExprError{
			Expr: name + "++",
			Err:  errors.New("counter " + name + " isn't a number: " + v.String()),
		}
	}
	if i, is := v.Int(); is {
		c.bs[name] = NewInt(i + 1)
	} else {
		c.bs[name] = NewFloat(n + 1)
	}
	return nil
}
