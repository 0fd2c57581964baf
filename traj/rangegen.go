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
	"math"
	"strconv"
)

// Tolerances for step walks.  A linear walk includes the endpoint
// when it's within StepTolerance*step.  A logarithmic walk includes
// it when it's within a relative LogTolerance.
//
// MaxPoints caps the length of a single range.
var (
	StepTolerance = 1e-5
	LogTolerance  = 1e-7
	MaxPoints     = 1000000
)

// Range parameter flags.
const (
	hasStart = 1 << iota
	hasStop
	hasStep
	hasN
	hasCenter
	hasWidth
)

var rangeParams = []string{"start", "stop", "step", "n", "center", "width"}

// validRanges holds the parameter combinations that determine a range.
var validRanges = map[int]bool{}

func init() {
	for _, anchors := range []int{
		hasStart | hasStop,
		hasStart | hasCenter,
		hasStart | hasWidth,
		hasStop | hasCenter,
		hasStop | hasWidth,
		hasCenter | hasWidth,
	} {
		validRanges[anchors] = true
		validRanges[anchors|hasStep] = true
		validRanges[anchors|hasN] = true
	}
	for _, anchor := range []int{hasStart, hasStop, hasCenter} {
		validRanges[anchor|hasStep] = true
		validRanges[anchor|hasStep|hasN] = true
	}
	validRanges[0] = true
	validRanges[hasN] = true
}

// RangeSpec is a parsed range or logrange specification.
//
// Each parameter is Missing when absent.  Present parameters can be
// expressions, which are evaluated when the range is realized.
type RangeSpec struct {
	Log bool

	Start, Stop, Step, N, Center, Width Value

	// Spec is the specification as written.
	Spec Value
}

func (r *RangeSpec) what() string {
	if r.Log {
		return "logrange"
	}
	return "range"
}

func (r *RangeSpec) errorf(msg string) error {
	return &SpecError{
		What: r.what(),
		Spec: r.Spec,
		Msg:  msg,
	}
}

// ParseRangeSpec checks the keys of a range specification.
//
// A bare number or expression is the number of points.
func ParseRangeSpec(spec Value, log bool) (*RangeSpec, error) {
	r := &RangeSpec{
		Log:  log,
		Spec: spec,
	}
	switch spec.Kind() {
	case IntKind, FloatKind, StringKind:
		r.N = spec
		return r, nil
	case ObjectKind:
	default:
		return nil, r.errorf("bad specification")
	}

	o, _ := spec.Object()
	bits := 0
	for _, name := range o.Names() {
		v, _ := o.Get(name)
		if v.Kind() == NullKind {
			continue
		}
		for i, p := range rangeParams {
			if p == name {
				bits |= 1 << uint(i)
			}
		}
		switch name {
		case "start":
			r.Start = v
		case "stop":
			r.Stop = v
		case "step":
			r.Step = v
		case "n":
			r.N = v
		case "center":
			r.Center = v
		case "width":
			r.Width = v
		default:
			return nil, r.errorf("unknown key " + strconv.Quote(name))
		}
	}
	if !validRanges[bits] {
		return nil, r.errorf("invalid parameter combination")
	}
	return r, nil
}

func (r *RangeSpec) params() []*Value {
	return []*Value{&r.Start, &r.Stop, &r.Step, &r.N, &r.Center, &r.Width}
}

// Realize evaluates the parameters and generates the values.
//
// When neither step nor n is given, loopLen is the number of points.
// A positive loopLen is also the required length of the result.
func (r *RangeSpec) Realize(c *Context, loopLen int) ([]Value, error) {
	var (
		bits int
		ps   [6]float64
	)
	for i, p := range r.params() {
		if p.IsMissing() {
			continue
		}
		bits |= 1 << uint(i)
		v, err := c.Eval(*p)
		if err != nil {
			return nil, err
		}
		x, is := v.Number()
		if !is {
			return nil, r.errorf("parameter " + rangeParams[i] + " isn't a number: " + v.String())
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, r.errorf("parameter " + rangeParams[i] + " isn't finite")
		}
		ps[i] = x
	}
	start, stop, step, n, center, width := ps[0], ps[1], ps[2], ps[3], ps[4], ps[5]

	count := loopLen
	if bits&hasN != 0 {
		if n != math.Floor(n) || n < 0 {
			return nil, r.errorf("number of points must be a whole number")
		}
		if float64(MaxPoints) < n {
			return nil, r.errorf("too many points")
		}
		count = int(n)
	}

	useStep := bits&hasStep != 0
	reverse := false
	span := float64(count-1) * math.Abs(step)

	switch bits {
	case hasStart | hasStop, hasStart | hasStop | hasStep, hasStart | hasStop | hasN:
	case hasStart | hasCenter, hasStart | hasCenter | hasStep, hasStart | hasCenter | hasN:
		stop = 2*center - start
	case hasStart | hasWidth, hasStart | hasWidth | hasStep, hasStart | hasWidth | hasN:
		stop = start + width
	case hasStop | hasCenter, hasStop | hasCenter | hasStep, hasStop | hasCenter | hasN:
		start = 2*center - stop
		reverse = true
	case hasStop | hasWidth, hasStop | hasWidth | hasStep, hasStop | hasWidth | hasN:
		start = stop - width
		reverse = true
	case hasCenter | hasWidth, hasCenter | hasWidth | hasStep, hasCenter | hasWidth | hasN:
		start, stop = center-width/2, center+width/2

	// An anchor and a step give the other end.  The points are
	// then filled in rather than walked.
	case hasStart | hasStep, hasStart | hasStep | hasN:
		stop = start + span
		useStep = false
	case hasStop | hasStep, hasStop | hasStep | hasN:
		start = stop - span
		useStep = false
	case hasCenter | hasStep, hasCenter | hasStep | hasN:
		start, stop = center-span/2, center+span/2
		useStep = false

	case 0, hasN:
		if r.Log {
			start, stop = 1, math.Pow(10, float64(count-1))
		} else {
			start, stop = 0, float64(count-1)
		}

	default:
		return nil, r.errorf("invalid parameter combination")
	}

	var (
		xs  []float64
		err error
	)
	if useStep {
		if step == 0 {
			return nil, r.errorf("step cannot be zero")
		}
		if r.Log {
			xs, err = r.logSteps(start, stop, step, reverse)
		} else {
			xs, err = r.linearSteps(start, stop, step, reverse)
		}
	} else {
		if count == 0 {
			return nil, r.errorf("unknown range length")
		}
		if r.Log {
			xs, err = r.logFill(start, stop, count)
		} else {
			xs = linearFill(start, stop, count)
		}
	}
	if err != nil {
		return nil, err
	}

	vs := coerce(xs)
	if 0 < loopLen && len(vs) != loopLen {
		return nil, &LengthMismatch{
			Spec: r.Spec,
			Want: loopLen,
			Got:  len(vs),
		}
	}
	return vs, nil
}

// linearSteps walks from start to stop by |step|.  A reverse walk
// starts at stop and the result is then put back in start-to-stop
// order.
func (r *RangeSpec) linearSteps(start, stop, step float64, reverse bool) ([]float64, error) {
	a, b := start, stop
	if reverse {
		a, b = stop, start
	}
	s := math.Abs(step)
	if b < a {
		s = -s
	}
	steps := math.Ceil((b + StepTolerance*s - a) / s)
	if float64(MaxPoints) < steps {
		return nil, r.errorf("too many points")
	}
	count := int(steps)
	if count < 1 {
		count = 1
	}
	xs := make([]float64, count)
	for i := range xs {
		xs[i] = a + float64(i)*s
	}
	if reverse {
		reverseFloats(xs)
	}
	return xs, nil
}

func (r *RangeSpec) logSteps(start, stop, step float64, reverse bool) ([]float64, error) {
	if start <= 0 || stop <= 0 {
		return nil, r.errorf("log range must be positive")
	}
	step = math.Abs(step)
	if step == 1 {
		return nil, r.errorf("log range must have step different from 1")
	}
	if step < 1 {
		step = 1 / step
	}

	a, b := start, stop
	if reverse {
		a, b = stop, start
	}

	var xs []float64
	switch {
	case a == b:
		xs = []float64{a}
	case a < b:
		for i := 0; ; i++ {
			x := a * math.Pow(step, float64(i))
			if b*(1+LogTolerance) < x {
				break
			}
			if MaxPoints <= len(xs) {
				return nil, r.errorf("too many points")
			}
			xs = append(xs, x)
		}
	default:
		for i := 0; ; i++ {
			x := a / math.Pow(step, float64(i))
			if x < b*(1-LogTolerance) {
				break
			}
			if MaxPoints <= len(xs) {
				return nil, r.errorf("too many points")
			}
			xs = append(xs, x)
		}
	}
	if reverse {
		reverseFloats(xs)
	}
	return xs, nil
}

// linearFill gives n evenly spaced points from start to stop
// inclusive.
func linearFill(start, stop float64, n int) []float64 {
	xs := make([]float64, n)
	if n == 1 {
		xs[0] = start
		return xs
	}
	d := (stop - start) / float64(n-1)
	for i := range xs {
		xs[i] = start + float64(i)*d
	}
	xs[n-1] = stop
	return xs
}

// logFill gives n points from start to stop inclusive, evenly
// spaced in log10.
func (r *RangeSpec) logFill(start, stop float64, n int) ([]float64, error) {
	if start <= 0 || stop <= 0 {
		return nil, r.errorf("log range must be positive")
	}
	ls := linearFill(log10(start), log10(stop), n)
	xs := make([]float64, n)
	for i, l := range ls {
		xs[i] = math.Pow(10, l)
	}
	xs[0] = start
	xs[n-1] = stop
	return xs, nil
}

// log10 is exact for powers of ten.
func log10(x float64) float64 {
	l := math.Log10(x)
	if e := math.Round(l); math.Pow(10, e) == x {
		return e
	}
	return l
}

func reverseFloats(xs []float64) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// coerce makes Int values if every number is integral.
func coerce(xs []float64) []Value {
	integral := true
	for _, x := range xs {
		if x != math.Floor(x) || math.Abs(x) > 1<<53 {
			integral = false
			break
		}
	}
	vs := make([]Value, len(xs))
	for i, x := range xs {
		if integral {
			vs[i] = NewInt(int64(x))
		} else {
			vs[i] = NewFloat(x)
		}
	}
	return vs
}
