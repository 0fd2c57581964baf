package traj

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFileDefaults(t *testing.T) {
	r := dryrun(t, `{loops: [{vary: {i: [1,2,3]}}]}`)
	for _, p := range r.Points {
		if s, _ := p["fileName"].Str(); s != "test43" {
			t.Fatal(p["fileName"])
		}
		if !p["fileNum"].Equal(NewInt(43)) || !p["instFileNum"].Equal(NewInt(143)) {
			t.Fatal(p["fileNum"], p["instFileNum"])
		}
		if s, _ := p["filePrefix"].Str(); s != "test" {
			t.Fatal(p["filePrefix"])
		}
		if s, _ := p["entryName"].Str(); s != "" {
			t.Fatal(p["entryName"])
		}
	}
}

func TestFileGroups(t *testing.T) {
	r := dryrun(t, `{
  fileGroup: 'g',
  filePrefix: "'run'",
  entryName: 'g',
  loops: [{vary: {g: ["'x'", "'x'", "'y'", "'x'", "'z'"]}}]
}`)

	if diff := cmp.Diff([]string{"43", "43", "44", "44", "45"}, column(r.Points, "fileNum")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"143", "143", "144", "144", "145"}, column(r.Points, "instFileNum")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"run43", "run43", "run44", "run44", "run45"}, column(r.Points, "fileName")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"x", "x", "y", "x", "z"}, column(r.Points, "entryName")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"0", "1", "2", "3", "4"}, column(r.Points, "pointNum")); diff != "" {
		t.Fatal(diff)
	}
}

func TestFileGroupsAcrossLoops(t *testing.T) {
	// Groups are remembered for the whole run.
	r := dryrun(t, `{
  fileGroup: 'g',
  loops: [{vary: {g: [1, 2]}}, {vary: {g: [2, 1, 3]}}]
}`)
	if diff := cmp.Diff([]string{"43", "44", "44", "44", "45"}, column(r.Points, "fileNum")); diff != "" {
		t.Fatal(diff)
	}
}

func TestFilePatternUnbound(t *testing.T) {
	tr := mustCompile(t, `{fileGroup: 'nope', loops: [{vary: {g: [1]}}]}`)
	r, err := tr.Dryrun(context.Background(), &Options{Interpreter: lookup})
	if err == nil {
		t.Fatalf("no complaint but %d points", len(r.Points))
	}
}

func TestCounters(t *testing.T) {
	tr := mustCompile(t, `{loops: [{vary: {g: [1, 2]}}]}`)
	r, err := tr.Dryrun(context.Background(), &Options{
		Interpreter: lookup,
		Counters: &Counters{
			FileNum:     0,
			InstFileNum: 10,
			ExpPointNum: 100,
			PointNum:    5,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"5", "6"}, column(r.Points, "pointNum")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"1", "1"}, column(r.Points, "fileNum")); diff != "" {
		t.Fatal(diff)
	}
	if diff := cmp.Diff([]string{"100", "101"}, column(r.Points, "expPointNum")); diff != "" {
		t.Fatal(diff)
	}
}
