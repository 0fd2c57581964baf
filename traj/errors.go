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

// These errors are user errors: each one means the trajectory
// document needs fixing.  Nothing here is retryable.

import (
	"errors"
	"strconv"
)

// ErrExhausted is returned by Generator.Next when a generator has no
// more values.
var ErrExhausted = errors.New("generator exhausted")

// SpecError occurs when a range or list specification is malformed.
type SpecError struct {
	// What is the kind of spec ("range", "logrange", "list", ...).
	What string

	// Spec is the offending spec as written.
	Spec Value

	Msg string
}

func (e *SpecError) Error() string {
	return e.Msg + " in " + e.What + " " + e.Spec.String()
}

// UnboundVariable occurs when an expression refers to a name that
// isn't bound yet.
type UnboundVariable struct {
	Expr string
	Name string
}

func (e *UnboundVariable) Error() string {
	return `unbound variable "` + e.Name + `" when evaluating ` + e.Expr
}

// ExprError reports any other failure of an expression.
type ExprError struct {
	Expr string
	Err  error
}

func (e *ExprError) Error() string {
	return e.Err.Error() + " when evaluating " + e.Expr
}

func (e *ExprError) Unwrap() error {
	return e.Err
}

// StructureError occurs when a trajectory document has the wrong
// shape: an unknown keyword, extra keys in a loop body, and so on.
type StructureError struct {
	// Where locates the problem ("loops[0].vary").
	Where string
	Msg   string
}

func (e *StructureError) Error() string {
	if e.Where == "" {
		return e.Msg
	}
	return e.Where + ": " + e.Msg
}

// LengthMismatch occurs when a range generates a number of points
// different from the first variable in its loop.
type LengthMismatch struct {
	Spec Value
	Want int
	Got  int
}

func (e *LengthMismatch) Error() string {
	return "range length " + strconv.Itoa(e.Got) + " different from number of points " +
		strconv.Itoa(e.Want) + " in loop for " + e.Spec.String()
}

// InconsistentLoop occurs when a later generator in a loop body runs
// out before the first one.
type InconsistentLoop struct {
	Name string
	Step int
}

func (e *InconsistentLoop) Error() string {
	return `loop variable "` + e.Name + `" exhausted at step ` + strconv.Itoa(e.Step) +
		" before the first loop variable"
}
