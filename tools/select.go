package tools

import (
	"fmt"

	"github.com/reflectometry/scattio/traj"

	"github.com/ohler55/ojg/jp"
)

// Select evaluates a JSONPath expression against the points, which
// are presented as an array of objects.
//
// For example, "$[?(@.skip == false)].fileName" gives the file names
// of the points that aren't skipped.
func Select(points []traj.Point, path string) ([]interface{}, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", path, err)
	}

	root := make([]interface{}, len(points))
	for i, p := range points {
		root[i] = traj.Bindings(p).Interface()
	}

	return x.Get(root), nil
}
