package tools

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/reflectometry/scattio/traj"

	"github.com/jsccast/yaml"
)

// Expect is a specification for a point that's expected.
type Expect struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Index is the point's position in the run.
	Index int `json:"index" yaml:"index"`

	// Fields maps flattened names ("counter.timePreset") to the
	// values the point must have.
	Fields map[string]interface{} `json:"fields" yaml:"fields"`
}

// Session is a trajectory and what a dry run of it should produce.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Trajectory is the trajectory's filename, relative to the
	// session's file.
	Trajectory string `json:"trajectory" yaml:"trajectory"`

	// Count, if not negative, is the required number of points.
	Count int `json:"count" yaml:"count"`

	// TrajName, if not empty, is the required trajectory name.
	TrajName string `json:"trajName,omitempty" yaml:"trajName,omitempty"`

	Expects []Expect `json:"expects" yaml:"expects"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	dir string
}

// ReadSession reads a Session in YAML (or JSON).
func ReadSession(filename string) (*Session, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	s := Session{
		Count: -1,
	}
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	s.dir = filepath.Dir(filename)
	return &s, nil
}

// Mismatches is the error returned when expectations fail.
type Mismatches []string

func (ms Mismatches) Error() string {
	return strings.Join(ms, "; ")
}

// Run does a dry run of the trajectory and checks the expectations.
// All failed expectations are reported in one Mismatches error.
func (s *Session) Run(ctx context.Context) (*traj.Result, error) {
	filename := s.Trajectory
	if s.dir != "" && !filepath.IsAbs(filename) {
		filename = filepath.Join(s.dir, filename)
	}
	t, err := traj.Load(filename)
	if err != nil {
		return nil, err
	}
	r, err := t.Dryrun(ctx, &traj.Options{Verbose: s.Verbose})
	if err != nil {
		return nil, err
	}
	return r, s.Check(r)
}

// Check compares a Result with the expectations.
func (s *Session) Check(r *traj.Result) error {
	var ms Mismatches
	if 0 <= s.Count && len(r.Points) != s.Count {
		ms = append(ms, fmt.Sprintf("got %d points, not %d", len(r.Points), s.Count))
	}
	if s.TrajName != "" && r.TrajName != s.TrajName {
		ms = append(ms, fmt.Sprintf("trajName is %q, not %q", r.TrajName, s.TrajName))
	}
	for _, e := range s.Expects {
		if e.Index < 0 || len(r.Points) <= e.Index {
			ms = append(ms, fmt.Sprintf("no point %d", e.Index))
			continue
		}
		flat := traj.Bindings(r.Points[e.Index]).Flatten()
		for name, x := range e.Fields {
			want, err := traj.FromInterface(x)
			if err != nil {
				return err
			}
			got, have := flat[name]
			if !have {
				ms = append(ms, fmt.Sprintf("point %d has no %s", e.Index, name))
				continue
			}
			if !got.Equal(want) {
				ms = append(ms, fmt.Sprintf("point %d %s is %s, not %s", e.Index, name, got, want))
			}
		}
	}
	if len(ms) == 0 {
		return nil
	}
	return ms
}
