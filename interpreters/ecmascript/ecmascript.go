/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package ecmascript provides an ECMAScript expression interpreter
// for trajectories.
package ecmascript

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/reflectometry/scattio/traj"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// init adds an Interpreter as one of the DefaultInterpreters.
func init() {
	traj.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements traj.Interpreter using Goja, which is a
// Go implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Strict compiles expressions in strict mode.
	Strict bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Compile calls goja.Compile.  This step is optional.
func (i *Interpreter) Compile(ctx context.Context, src string) (interface{}, error) {
	p, err := goja.Compile("", src, i.Strict)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var referenceError = regexp.MustCompile(`^ReferenceError: (.+) is not defined`)

// Exec implements the Interpreter method of the same name.
//
// Every binding is a global variable.  The globals also include
// sprintf, some math functions (see helpers), and the usual Math
// object.  Bindings shadow helpers with the same name.
//
// The runtime is thrown away after each evaluation, so an
// expression can't change the bindings.
func (i *Interpreter) Exec(ctx context.Context, bs traj.Bindings, src string, compiled interface{}) (traj.Value, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return traj.Missing, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return traj.Missing, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	o := goja.New()
	if err := setHelpers(o); err != nil {
		return traj.Missing, err
	}
	for name, v := range bs {
		if err := o.Set(name, toJS(o, v)); err != nil {
			return traj.Missing, err
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := RunProgram(o, p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return traj.Missing, Interrupted
		}
		if ex, is := err.(*goja.Exception); is {
			msg := ex.Value().String()
			if m := referenceError.FindStringSubmatch(msg); m != nil {
				return traj.Missing, &traj.UnboundVariable{
					Expr: src,
					Name: m[1],
				}
			}
			return traj.Missing, errors.New(msg)
		}
		return traj.Missing, err
	}

	return fromJS(v)
}

// RunProgram runs the program, turning any panic into an error.
func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}

// toJS makes a native ECMAScript value so that object field order
// survives.
func toJS(o *goja.Runtime, v traj.Value) goja.Value {
	switch v.Kind() {
	case traj.UndefinedKind:
		return goja.Undefined()
	case traj.NullKind:
		return goja.Null()
	case traj.ListKind:
		xs, _ := v.List()
		acc := make([]interface{}, len(xs))
		for i, x := range xs {
			acc[i] = toJS(o, x)
		}
		return o.NewArray(acc...)
	case traj.ObjectKind:
		obj := o.NewObject()
		fields, _ := v.Object()
		for _, name := range fields.Names() {
			x, _ := fields.Get(name)
			obj.Set(name, toJS(o, x))
		}
		return obj
	}
	return o.ToValue(v.Interface())
}

// fromJS converts a result.  Undefined becomes null.
func fromJS(v goja.Value) (traj.Value, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return traj.Null, nil
	}
	if obj, is := v.(*goja.Object); is {
		switch obj.ClassName() {
		case "Function":
			return traj.Missing, errors.New("expression gave a function")
		case "Array":
			n := int(obj.Get("length").ToInteger())
			acc := make([]traj.Value, n)
			for i := 0; i < n; i++ {
				x, err := fromJS(obj.Get(strconv.Itoa(i)))
				if err != nil {
					return traj.Missing, err
				}
				acc[i] = x
			}
			return traj.NewList(acc...), nil
		case "Object":
			pairs := make([]interface{}, 0, 16)
			for _, name := range obj.Keys() {
				x, err := fromJS(obj.Get(name))
				if err != nil {
					return traj.Missing, err
				}
				pairs = append(pairs, name, x)
			}
			o, err := traj.NewObjectFrom(pairs...)
			if err != nil {
				return traj.Missing, err
			}
			return traj.NewObject(o), nil
		}
	}
	return traj.FromInterface(v.Export())
}
