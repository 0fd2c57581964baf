package traj

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoPoints is returned when there is nothing to put in a Table.
var ErrNoPoints = errors.New("no points to columnate")

// Table holds points as aligned columns.
type Table struct {
	// Names are the column names in lexical order.
	Names []string

	// Columns maps each name to one value per point.  A point
	// without the field has Missing.
	Columns map[string][]Value

	// Rows is the number of points.
	Rows int
}

// Columnate turns points into a Table.
//
// Object values are flattened one level into dotted names.  Columns
// whose top-level name is in constants are dropped.
func Columnate(points []Point, constants Bindings) (*Table, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}

	cols := make(map[string][]Value, 32)
	for i, p := range points {
		flat := Bindings(p).Flatten()
		for name, v := range flat {
			col, have := cols[name]
			if !have {
				col = make([]Value, i, len(points))
			}
			cols[name] = append(col, v)
		}
		for name, col := range cols {
			if len(col) == i {
				cols[name] = append(col, Missing)
			}
		}
	}

	t := &Table{
		Columns: make(map[string][]Value, len(cols)),
		Rows:    len(points),
	}
	for name, col := range cols {
		if constants.Has(topName(name)) {
			continue
		}
		t.Columns[name] = col
		t.Names = append(t.Names, name)
	}
	sort.Strings(t.Names)

	return t, nil
}

func topName(name string) string {
	if i := strings.Index(name, Separator); 0 < i {
		return name[:i]
	}
	return name
}

// Row returns the values of one point in column order.
func (t *Table) Row(i int) []Value {
	acc := make([]Value, len(t.Names))
	for j, name := range t.Names {
		acc[j] = t.Columns[name][i]
	}
	return acc
}
