package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/reflectometry/scattio/interpreters"
	"github.com/reflectometry/scattio/tools"
	"github.com/reflectometry/scattio/traj"
	"github.com/reflectometry/scattio/util"
)

//go:embed examples/*.trj
var examples embed.FS

// Examples maps the -example names to embedded trajectories.
var Examples = map[string]string{
	"refl": "examples/polrefl.trj",
	"sans": "examples/sans.trj",
}

// Source is the trajectory that a subcommand works on, along with
// how to run it.
type Source struct {
	Filename    string
	Example     string
	Inline      bool
	Interpreter string
	Verbose     bool
	Timeout     time.Duration
}

func (s *Source) flags(fs *flag.FlagSet) {
	fs.StringVar(&s.Filename, "f", "", "trajectory filename (.yaml or .yml for YAML)")
	fs.StringVar(&s.Example, "example", "", "built-in example trajectory: refl or sans")
	fs.BoolVar(&s.Inline, "inline", false, `expand %inline("NAME") before parsing`)
	fs.StringVar(&s.Interpreter, "i", "ecmascript", "expression interpreter")
	fs.BoolVar(&s.Verbose, "v", false, "log evaluations and points")
	fs.DurationVar(&s.Timeout, "timeout", time.Minute, "limit for the whole run")
}

// Load parses and compiles the trajectory.
func (s *Source) Load() (*traj.Trajectory, error) {
	switch {
	case s.Example != "":
		name, have := Examples[s.Example]
		if !have {
			return nil, fmt.Errorf("unknown example %q", s.Example)
		}
		bs, err := examples.ReadFile(name)
		if err != nil {
			return nil, err
		}
		doc, err := traj.Parse(bs)
		if err != nil {
			return nil, err
		}
		return traj.Compile(doc, name)
	case s.Filename == "":
		return nil, errors.New("need -f or -example")
	case s.Inline:
		return tools.LoadWithInlines(s.Filename)
	}
	return traj.Load(s.Filename)
}

// Options makes the run options.
func (s *Source) Options() (*traj.Options, error) {
	if s.Verbose {
		util.Logging = true
	}
	opts := &traj.Options{
		Verbose: s.Verbose,
	}
	if s.Interpreter != "" {
		i, have := interpreters.Standard()[s.Interpreter]
		if !have {
			return nil, fmt.Errorf("unknown interpreter %q", s.Interpreter)
		}
		opts.Interpreter = i
	}
	return opts, nil
}

// Dryrun loads the trajectory and collects its points.
func (s *Source) Dryrun(ctx context.Context) (*traj.Trajectory, *traj.Result, error) {
	t, err := s.Load()
	if err != nil {
		return nil, nil, err
	}
	opts, err := s.Options()
	if err != nil {
		return nil, nil, err
	}
	if 0 < s.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	r, err := t.Dryrun(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return t, r, nil
}
