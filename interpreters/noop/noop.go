package noop

import (
	"context"
	"log"

	"github.com/reflectometry/scattio/traj"
)

// Interpreter is a traj.Interpreter that doesn't evaluate anything:
// an expression's value is its own source text.
//
// Useful for looking at the shape of a trajectory whose loops don't
// depend on computed ranges.
type Interpreter struct {
	// Silent suppresses the warning logged for each expression.
	Silent bool
}

func (i *Interpreter) Compile(ctx context.Context, src string) (interface{}, error) {
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs traj.Bindings, src string, compiled interface{}) (traj.Value, error) {
	if !i.Silent {
		log.Printf("warning: not evaluating %q", src)
	}
	return traj.NewString(src), nil
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}
