package traj

import (
	"context"
	"testing"

	"github.com/reflectometry/scattio/util/testutil"

	"github.com/google/go-cmp/cmp"
)

func TestParseRelaxed(t *testing.T) {
	src := `
// comment
{
  zeta: 1, /* another */
  'alpha': 'single',
  "mid": [1, -2, +3.5, -0.25, true, false, null,],
  1.5: "numeric key",
  obj: {b: 1, a: 2,},
}`
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	o, is := v.Object()
	if !is {
		t.Fatal(v)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid", "1.5", "obj"}, o.Names()); diff != "" {
		t.Fatal(diff)
	}
	mid, _ := o.Get("mid")
	if mid.String() != "[1, -2, 3.5, -0.25, true, false, null]" {
		t.Fatal(mid)
	}
	if x, _ := mid.List(); x[1].Kind() != IntKind {
		t.Fatal(x[1].Kind())
	}
	inner, _ := o.Get("obj")
	if x, _ := inner.Object(); x.Names()[0] != "b" {
		t.Fatal(x.Names())
	}
}

func TestParseRejects(t *testing.T) {
	for _, src := range []string{
		`{a: f(1)}`,
		`{a: x}`,
		`{a: 1 + 2}`,
		`{[k]: 1}`,
		`{a: [1,,2]}`,
		`{a: 1`,
		`{a: 1}; {b: 2}`,
	} {
		if v, err := Parse([]byte(src)); err == nil {
			t.Fatalf("%s: no complaint but %s", src, v)
		}
	}
}

func TestParseFiles(t *testing.T) {
	for _, filename := range []string{"testdata/polrefl.trj", "testdata/sans.trj", "testdata/scan.yaml"} {
		t.Run(filename, func(t *testing.T) {
			if _, err := Load(filename); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestParseYAMLOrder(t *testing.T) {
	tr, err := Load("testdata/scan.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if tr.DefaultName() != "scan" {
		t.Fatal(tr.DefaultName())
	}
	var keywords []string
	for _, d := range tr.Directives {
		keywords = append(keywords, d.Keyword)
	}
	if diff := cmp.Diff([]string{"trajName", "descr", "fileGroup", "init", "loops"}, keywords); diff != "" {
		t.Fatal(diff)
	}
	loops := tr.Loops()
	if len(loops) != 1 {
		t.Fatal(len(loops))
	}
	var names []string
	for _, v := range loops[0].Vary {
		names = append(names, v.Name)
	}
	if diff := cmp.Diff([]string{"Q", "counter.timePreset", "theta"}, names); diff != "" {
		t.Fatal(diff)
	}
	if loops[0].Vary[1].Kind != LogRangeVary {
		t.Fatal(loops[0].Vary[1].Kind)
	}
}

func TestParseFileBOM(t *testing.T) {
	filename := testutil.WriteFile(t, "bom.trj", "\xef\xbb\xbf{trajName: \"'x'\", loops: []}")
	tr, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if tr.DefaultName() != "bom" || len(tr.Directives) != 2 {
		t.Fatal(tr.DefaultName(), len(tr.Directives))
	}
}

func TestParseFileYML(t *testing.T) {
	filename := testutil.WriteFile(t, "short.yml", "loops:\n  - vary: {x: [1, 2]}\n")
	tr, err := Load(filename)
	if err != nil {
		t.Fatal(err)
	}
	if ls := tr.Loops(); len(ls) != 1 || ls[0].Vary[0].Kind != LiteralListVary {
		t.Fatal(tr.Loops())
	}
}

func TestParseYAMLBareKeys(t *testing.T) {
	doc, err := ParseYAML([]byte("loops:\n  - vary:\n      x: {range: {start: 1, stop: 5, n: 5}}\n      y: {logrange: {start: 1, stop: 10000, n: 5}}\n"))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := Compile(doc, "bare.yaml")
	if err != nil {
		t.Fatal(err)
	}
	r, err := tr.Dryrun(context.Background(), &Options{Interpreter: lookup})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "4", "5"}, column(r.Points, "x")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"1", "10", "100", "1000", "10000"}, column(r.Points, "y")); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseYAMLComplexKey(t *testing.T) {
	if _, err := ParseYAML([]byte("? [a, b]\n: 1\n")); err == nil {
		t.Fatal("no complaint about a sequence key")
	}
}
