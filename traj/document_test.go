package traj

import (
	"errors"
	"testing"
)

func TestCompileErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want interface{}
	}{
		{"not an object", `[1]`, &StructureError{}},
		{"unknown keyword", `{trajname: "'x'"}`, &StructureError{}},
		{"bad init", `{init: [1]}`, &StructureError{}},
		{"loops not a list", `{loops: {vary: {a: [1]}}}`, &StructureError{}},
		{"extra loop key", `{loops: [{vary: {a: [1]}, loop: []}]}`, &StructureError{}},
		{"no vary", `{loops: [{loops: []}]}`, &StructureError{}},
		{"bad vary", `{loops: [{vary: 1}]}`, &StructureError{}},
		{"bad pair", `{loops: [{vary: [["a"]]}]}`, &StructureError{}},
		{"extra range key", `{loops: [{vary: {a: {range: 3, cyclic: true}}}]}`, &StructureError{}},
		{"empty list", `{loops: [{vary: {a: []}}]}`, &SpecError{}},
		{"empty list spec", `{loops: [{vary: {a: {list: {value: []}}}}]}`, &SpecError{}},
		{"list key", `{loops: [{vary: {a: {list: {value: [1], cycle: true}}}}]}`, &SpecError{}},
		{"list value", `{loops: [{vary: {a: {list: {value: 1}}}}]}`, &SpecError{}},
		{"range key", `{loops: [{vary: {a: {range: {begin: 1}}}}]}`, &SpecError{}},
		{"nested", `{loops: [{vary: {a: [1]}, loops: [{vary: {b: {logrange: {x: 1}}}}]}]}`, &SpecError{}},
		{"range combination", `{loops: [{vary: {a: {range: {start: 1, stop: 2, center: 3}}}}]}`, &SpecError{}},
		{"later range combination", `{loops: [{vary: {x: {range: 2}}}, {vary: {y: {range: {start: 1}}}}]}`, &SpecError{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(mustParse(t, tc.src), "")
			if err == nil {
				t.Fatal("should have complained")
			}
			switch tc.want.(type) {
			case *StructureError:
				var se *StructureError
				if !errors.As(err, &se) {
					t.Fatalf("%T: %s", err, err)
				}
			case *SpecError:
				var se *SpecError
				if !errors.As(err, &se) {
					t.Fatalf("%T: %s", err, err)
				}
			}
		})
	}
}

func TestCompileWhere(t *testing.T) {
	_, err := Compile(mustParse(t, `{loops: [{vary: {a: [1]}}, {vary: {a: [1]}, loops: [{vary: {b: [1]}, extra: 1}]}]}`), "")
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatal(err)
	}
	if se.Where != "loops[1].loops[0]" {
		t.Fatal(se.Where)
	}
}

func TestCompileKinds(t *testing.T) {
	tr := mustCompile(t, `{loops: [{vary: {
  a: {range: 3},
  b: {logrange: {start: 1, stop: 100}},
  c: {list: {value: [1, 2]}},
  d: [1, 2],
  e: 'a',
  f: {x: 'a'},
}}]}`)
	want := []VaryKind{RangeVary, LogRangeVary, ListVary, LiteralListVary, ScalarVary, ObjectVary}
	vs := tr.Loops()[0].Vary
	if len(vs) != len(want) {
		t.Fatal(len(vs))
	}
	for i, v := range vs {
		if v.Kind != want[i] {
			t.Fatalf("%s is %s, not %s", v.Name, v.Kind, want[i])
		}
	}
}

func TestDefaultName(t *testing.T) {
	for filename, want := range map[string]string{
		"":                 "traj",
		"polrefl.trj":      "polrefl",
		"/a/b/sans.v2.trj": "sans.v2",
		"noext":            "noext",
	} {
		tr := &Trajectory{Filename: filename}
		if got := tr.DefaultName(); got != want {
			t.Fatalf("%q: got %q", filename, got)
		}
	}
}

func TestRunKeywords(t *testing.T) {
	r := dryrun(t, `{
  trajName: "'mine'",
  descr: "'about'",
  neverWrite: ["i"],
  alwaysWrite: ["t1", "t2"],
  init: {up: 1},
  loops: [{vary: {i: [1]}}]
}`)
	if r.TrajName != "mine" || r.Descr != "about" {
		t.Fatal(r.TrajName, r.Descr)
	}
	if len(r.NeverWrite) != 1 || r.NeverWrite[0] != "i" {
		t.Fatal(r.NeverWrite)
	}
	if len(r.AlwaysWrite) != 2 {
		t.Fatal(r.AlwaysWrite)
	}
	for _, name := range []string{"trajName", "descr", "neverWrite", "alwaysWrite", "up"} {
		if !r.Constants.Has(name) {
			t.Fatalf("constants lack %s", name)
		}
	}
	if r.Constants.Has("pointNum") {
		t.Fatal("pointNum is constant")
	}
	if s, _ := r.Points[0]["filePrefix"].Str(); s != "mine" {
		t.Fatal(r.Points[0]["filePrefix"])
	}
}
