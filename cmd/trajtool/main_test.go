package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reflectometry/scattio/record/sqlite"
)

func run(t *testing.T, name string, args ...string) string {
	t.Helper()
	mod := Mods[name]
	fs := mod.Flags()
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := mod.F(context.Background(), fs.Args(), &out); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestDryrunSummary(t *testing.T) {
	got := run(t, "dryrun", "-example", "sans", "-s")
	if got != "trajName sans: 300 points\n" {
		t.Fatal(got)
	}
}

func TestCSV(t *testing.T) {
	got := run(t, "csv", "-example", "refl")
	lines := strings.Split(got, "\n")
	if !strings.HasPrefix(lines[0], `"detectorAngle","entryName",`) {
		t.Fatal(lines[0])
	}
	if lines[1] != `0,"A",1042,"","polrefl43",43,"polrefl",0,143,0,0,0,0,false,1,1,200` {
		t.Fatal(lines[1])
	}
}

func TestSelect(t *testing.T) {
	got := run(t, "select", "-example", "sans", "-p", "$[1].fileName")
	if got != "\"sans44\"\n" {
		t.Fatal(got)
	}
}

func TestAnalyze(t *testing.T) {
	got := run(t, "analyze", "-example", "refl")
	if !strings.Contains(got, `"Loops": 3`) {
		t.Fatal(got)
	}
}

func TestRecordSQLite(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "points.sqlite")
	run(t, "record", "-example", "sans", "-store", "sqlite", "-o", filename)

	names, err := sqlite.Trajectories(context.Background(), filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "sans" {
		t.Fatal(names)
	}
}

func TestPublishStdio(t *testing.T) {
	got := run(t, "publish", "-example", "sans", "-sink", "stdio")
	if n := strings.Count(got, "\n"); n != 300 {
		t.Fatal(n)
	}
}

func TestExpect(t *testing.T) {
	got := run(t, "expect", "-s", filepath.Join("..", "..", "tools", "testdata", "sans.expect.yaml"))
	if got != "ok: 300 points\n" {
		t.Fatal(got)
	}
}

func TestUnknownExample(t *testing.T) {
	s := &Source{Example: "nope"}
	if _, err := s.Load(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestYAMLToJSON(t *testing.T) {
	js, err := YAMLToJSON([]byte("loops:\n  - vary: {x: {range: 3}}\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	if string(js) != `{"loops":[{"vary":{"x":{"range":3}}}]}` {
		t.Fatal(string(js))
	}
}
