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
)

var (
	// DefaultInterpreters is used when Options.Interpreter is nil.
	//
	// Interpreter packages register themselves here in their init
	// functions.
	DefaultInterpreters = make(map[string]Interpreter)

	// DefaultInterpreterName names the entry in
	// DefaultInterpreters that a Run uses by default.
	DefaultInterpreterName = "ecmascript"
)

// Interpreter evaluates the expressions embedded in a trajectory.
//
// An Interpreter must not modify the given Bindings.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// expression later.
	Compile(ctx context.Context, src string) (interface{}, error)

	// Exec evaluates the expression against the bindings.  The
	// result of a previous Compile() might be provided.
	//
	// A reference to an unbound name should be reported as an
	// *UnboundVariable.
	Exec(ctx context.Context, bs Bindings, src string, compiled interface{}) (Value, error)
}

// InterpreterFunc adapts a plain function into an Interpreter that
// doesn't compile anything.
type InterpreterFunc func(ctx context.Context, bs Bindings, src string) (Value, error)

func (f InterpreterFunc) Compile(ctx context.Context, src string) (interface{}, error) {
	return nil, nil
}

func (f InterpreterFunc) Exec(ctx context.Context, bs Bindings, src string, compiled interface{}) (Value, error) {
	return f(ctx, bs, src)
}
