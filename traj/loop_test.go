package traj

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoopListPadding(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {i: {range: 5}, x: [1,2,3], y: {list: {value: [1,2,3], cyclic: true}}}}]}`)

	if diff := cmp.Diff([]string{"1", "2", "3", "3", "3"}, column(r.Points, "x")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "1", "2"}, column(r.Points, "y")); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoopFirstListDrives(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {x: {list: {value: [1,2,3], cyclic: true}}, i: {range: {start: 10, step: 1}}}}]}`)

	if diff := cmp.Diff([]string{"1", "2", "3"}, column(r.Points, "x")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"10", "11", "12"}, column(r.Points, "i")); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoopScalars(t *testing.T) {
	// A scalar first is one step.  A scalar later repeats and is
	// evaluated in each step.
	r := dryrun(t, `{loops: [{vary: {a: "'here'"}}, {vary: {i: [1,2], j: 'i'}}]}`)
	if len(r.Points) != 3 {
		t.Fatal(len(r.Points))
	}
	if diff := cmp.Diff([]string{"here", "", ""}, column(r.Points, "a")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"", "1", "2"}, column(r.Points, "j")); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoopLazyListElements(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {i: [10, 20], x: ['i', 7]}}]}`)
	if diff := cmp.Diff([]string{"10", "7"}, column(r.Points, "x")); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoopNested(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {a: {range: 3}}, loops: [{vary: {b: {range: 4}}}]}]}`)
	if len(r.Points) != 12 {
		t.Fatal(len(r.Points))
	}
	for k, p := range r.Points {
		if !p["a"].Equal(NewInt(int64(k/4))) || !p["b"].Equal(NewInt(int64(k%4))) {
			t.Fatalf("%d: a=%s b=%s", k, p["a"], p["b"])
		}
		if !p["pointNum"].Equal(NewInt(int64(k))) {
			t.Fatalf("%d: pointNum %s", k, p["pointNum"])
		}
		if !p["expPointNum"].Equal(NewInt(int64(1042 + k))) {
			t.Fatalf("%d: expPointNum %s", k, p["expPointNum"])
		}
	}
	if r.Count != 12 {
		t.Fatal(r.Count)
	}
}

func TestLoopSiblingScopes(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {a: [1,2]}}, {vary: {b: [3]}}]}`)
	if len(r.Points) != 3 {
		t.Fatal(len(r.Points))
	}
	if r.Points[2].Has("a") {
		t.Fatal("a leaked into a sibling loop")
	}
	if !r.Points[2]["pointNum"].Equal(NewInt(2)) {
		t.Fatal(r.Points[2]["pointNum"])
	}
}

func TestLoopRangeSeesOuterScope(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {n: [2,3]}, loops: [{vary: {i: {range: {n: 'n'}}}}]}]}`)
	if diff := cmp.Diff([]string{"0", "1", "0", "1", "2"}, column(r.Points, "i")); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoopVaryPairs(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: [["b", [1,2]], ["a", "b"]]}]}`)
	if diff := cmp.Diff([]string{"1", "2"}, column(r.Points, "a")); diff != "" {
		t.Fatal(diff)
	}
}

func TestLoopObjectVary(t *testing.T) {
	r := dryrun(t, `{
  init: {counter: {countAgainst: "'TIME'"}},
  loops: [{vary: {S: [1,2], counter: {timePreset: 'S'}}}]
}`)
	for k, p := range r.Points {
		o, is := p["counter"].Object()
		if !is {
			t.Fatal(p["counter"])
		}
		if v, _ := o.Get("timePreset"); !v.Equal(NewInt(int64(k + 1))) {
			t.Fatal(v)
		}
		if v, _ := o.Get("countAgainst"); !v.Equal(NewString("TIME")) {
			t.Fatal(v)
		}
	}
	// The constant object wasn't touched.
	o, _ := r.Constants["counter"].Object()
	if o.Len() != 1 {
		t.Fatal(o.Names())
	}
}

func TestLoopUnbound(t *testing.T) {
	tr := mustCompile(t, `{loops: [{vary: {a: 'b', b: [1]}}]}`)
	n := 0
	_, err := tr.Run(context.Background(), &Options{Interpreter: lookup}, func(p Point) error {
		n++
		return nil
	})
	var unbound *UnboundVariable
	if !errors.As(err, &unbound) {
		t.Fatalf("%#v", err)
	}
	if unbound.Expr != "b" {
		t.Fatal(unbound.Expr)
	}
	if n != 0 {
		t.Fatal(n)
	}
}

func TestLoopLengthMismatch(t *testing.T) {
	tr := mustCompile(t, `{loops: [{vary: {a: [1,2,3], b: {range: {start: 0, stop: 1, n: 2}}}}]}`)
	_, err := tr.Dryrun(context.Background(), &Options{Interpreter: lookup})
	var lm *LengthMismatch
	if !errors.As(err, &lm) {
		t.Fatalf("%#v", err)
	}
}

// shortGen runs out too soon.
type shortGen struct{}

func (g shortGen) Len() int {
	return 0
}

func (g shortGen) Next(c *Context) (Value, error) {
	return Missing, ErrExhausted
}

func TestInconsistentLoop(t *testing.T) {
	l := &Loop{
		Vary: []*Vary{{Name: "a"}, {Name: "x"}},
	}
	gens := []Generator{&seqGen{vs: []Value{NewInt(1)}}, shortGen{}}
	err := l.iterate(newTestContext(), gens, func(c *Context) error {
		t.Fatal("emitted")
		return nil
	})
	var il *InconsistentLoop
	if !errors.As(err, &il) {
		t.Fatalf("%#v", err)
	}
	if il.Name != "x" || il.Step != 0 {
		t.Fatal(il)
	}
	if !strings.Contains(err.Error(), `"x"`) {
		t.Fatal(err)
	}
}

func TestLoopEmitError(t *testing.T) {
	tr := mustCompile(t, `{loops: [{vary: {a: [1,2,3]}}]}`)
	stop := errors.New("stop")
	n := 0
	_, err := tr.Run(context.Background(), &Options{Interpreter: lookup}, func(p Point) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	if err != stop {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatal(n)
	}
}

func TestLoopCanceled(t *testing.T) {
	tr := mustCompile(t, `{loops: [{vary: {a: [1,2,3]}}]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.Dryrun(ctx, &Options{Interpreter: lookup}); err != context.Canceled {
		t.Fatal(err)
	}
}
