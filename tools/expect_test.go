package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSession(t *testing.T) {
	s, err := ReadSession(filepath.Join("testdata", "sans.expect.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSessionMismatches(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "bad.yaml")
	src := `
trajectory: ` + abs(t, filepath.Join("..", "traj", "testdata", "polrefl.trj")) + `
count: 7
expects:
  - index: 0
    fields:
      fileName: polrefl42
      missing: 1
  - index: 100000
`
	if err := os.WriteFile(filename, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := ReadSession(filename)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Run(context.Background())
	ms, is := err.(Mismatches)
	if !is {
		t.Fatalf("%T %v", err, err)
	}
	if len(ms) != 4 {
		t.Fatal(ms)
	}
}

func abs(t *testing.T, filename string) string {
	t.Helper()
	a, err := filepath.Abs(filename)
	if err != nil {
		t.Fatal(err)
	}
	return a
}
