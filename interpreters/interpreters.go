package interpreters

import (
	"github.com/reflectometry/scattio/interpreters/ecmascript"
	"github.com/reflectometry/scattio/interpreters/noop"
	"github.com/reflectometry/scattio/traj"
)

// Standard returns the interpreters known by name.
func Standard() map[string]traj.Interpreter {
	is := make(map[string]traj.Interpreter)

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es
	is["goja"] = es

	strict := ecmascript.NewInterpreter()
	strict.Strict = true
	is["ecmascript-strict"] = strict

	is["noop"] = noop.NewInterpreter()

	return is
}
