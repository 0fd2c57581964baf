package traj

import (
	"context"
	"strings"
	"testing"
)

// lookup is a tiny interpreter: quoted strings, numbers, names, and
// the default file name pattern.
var lookup = InterpreterFunc(func(ctx context.Context, bs Bindings, src string) (Value, error) {
	src = strings.TrimSpace(src)
	if src == DefaultPatterns["fileName"] {
		return NewString(bs["filePrefix"].String() + bs["fileNum"].String()), nil
	}
	if 2 <= len(src) && src[0] == '\'' && src[len(src)-1] == '\'' {
		return NewString(src[1 : len(src)-1]), nil
	}
	if v, err := numberValue(src); err == nil {
		return v, nil
	}
	if v, have := bs[src]; have {
		return v, nil
	}
	return Missing, &UnboundVariable{
		Name: src,
	}
})

func newTestContext() *Context {
	return NewContext(context.Background(), lookup)
}

func mustParse(t *testing.T, src string) Value {
	t.Helper()
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("%s: %s", src, err)
	}
	return v
}

func mustCompile(t *testing.T, src string) *Trajectory {
	t.Helper()
	tr, err := Compile(mustParse(t, src), "test.trj")
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func dryrun(t *testing.T, src string) *Result {
	t.Helper()
	r, err := mustCompile(t, src).Dryrun(context.Background(), &Options{
		Interpreter: lookup,
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// column gets the named value from each point.
func column(ps []Point, name string) []string {
	acc := make([]string, len(ps))
	for i, p := range ps {
		acc[i] = p[name].String()
	}
	return acc
}
