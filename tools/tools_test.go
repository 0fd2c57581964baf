package tools

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/reflectometry/scattio/interpreters/ecmascript"
	"github.com/reflectometry/scattio/traj"
	. "github.com/reflectometry/scattio/util/testutil"

	"github.com/google/go-cmp/cmp"
)

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return nil
}

func load(t *testing.T, name string) *traj.Trajectory {
	t.Helper()
	tr, err := traj.Load(filepath.Join("..", "traj", "testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestDot(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "g.dot")

	out, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}

	if err := Dot(load(t, "sans.trj"), out); err != nil {
		t.Fatal(err)
	}

	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(bs)
	for _, want := range []string{
		"digraph G {",
		"label=<sans>",
		"root -> n1",
		"n1 -> n2",
		"n2 -> n3",
		"<B>CTR</B> range",
		"<B>sample</B> object",
		`style="filled,dashed"`,
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("no %q in %s", want, dot)
		}
	}
	if strings.Contains(dot, "n4") {
		t.Fatal(dot)
	}
}

func TestMermaid(t *testing.T) {
	out := &closingBuffer{}
	if err := Mermaid(load(t, "polrefl.trj"), out, nil); err != nil {
		t.Fatal(err)
	}
	if !out.closed {
		t.Fatal("not closed")
	}
	got := out.String()
	for _, want := range []string{
		"graph TB",
		`n0(("polrefl"))`,
		"n0 --> n1",
		"n2 --> n3",
		"style n3 fill:#bcf2db",
		"slit2Aperture: list",
		"slit1Aperture: literal list [1,2,3,4,5]",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in %s", want, got)
		}
	}
}

func TestAnalysis(t *testing.T) {
	a, err := Analyze(load(t, "sans.trj"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Loops != 3 || a.Depth != 3 || a.Leaves != 1 || len(a.Errors) != 0 {
		t.Fatal(JS(a))
	}
	want := map[string]int{"range": 3, "scalar": 6, "object": 2}
	if diff := cmp.Diff(want, a.Kinds); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"counter", "sample"}, a.Shadowed); diff != "" {
		t.Fatal(diff)
	}
	if len(a.Duplicates) != 0 {
		t.Fatal(a.Duplicates)
	}
}

func TestAnalysisDuplicates(t *testing.T) {
	doc, err := traj.Parse([]byte(`{loops: [{vary: [["x", [1, 2]], ["x", 3]]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := traj.Compile(doc, "")
	if err != nil {
		t.Fatal(err)
	}
	a, err := Analyze(tr)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"x"}, a.Duplicates); diff != "" {
		t.Fatal(diff)
	}
}

func TestAnalysisShadowedFields(t *testing.T) {
	doc, err := traj.Parse([]byte(`{init: {"counter.countAgainst": "'TIME'", slit: 1}, loops: [{vary: {"counter.timePreset": [1, 2]}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := traj.Compile(doc, "")
	if err != nil {
		t.Fatal(err)
	}
	a, err := Analyze(tr)
	if err != nil {
		t.Fatal(err)
	}
	if a.Depth != 1 || a.Leaves != 1 {
		t.Fatal(JS(a))
	}
	if diff := cmp.Diff([]string{"counter"}, a.Shadowed); diff != "" {
		t.Fatal(diff)
	}
}

func TestSelect(t *testing.T) {
	r, err := load(t, "sans.trj").Dryrun(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := Select(r.Points, "$[0].fileName")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]interface{}{"sans43"}, got); diff != "" {
		t.Fatal(diff)
	}

	got, err = Select(r.Points, "$[?(@.skip == true)].SNAME")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 12 {
		t.Fatal(len(got))
	}
	for _, x := range got {
		if x != "blocked beam" {
			t.Fatal(got)
		}
	}

	if _, err = Select(r.Points, "$[?("); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRenderTrajectoryPage(t *testing.T) {
	var out bytes.Buffer
	filename := filepath.Join("..", "traj", "testdata", "scan.yaml")
	if err := ReadAndRenderTrajectoryPage(context.Background(), filename, []string{"traj.css"}, &out); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"<title>scan</title>",
		"<em>specular</em>",
		`<span class="count">5</span> points`,
		`<span class="varyName">counter.timePreset</span>`,
		`href="traj.css"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in %s", want, got)
		}
	}
}
