package traj

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Cell renders a value for CSV output.
//
// Missing and null are empty.  Strings are quoted.  Integers use %d
// and floats use %.6g.  Lists and objects are quoted renderings such
// as "[1, 2]" or "{k: 1}".
func Cell(v Value) string {
	switch v.Kind() {
	case UndefinedKind, NullKind:
		return ""
	case BoolKind:
		b, _ := v.Bool()
		if b {
			return "true"
		}
		return "false"
	case IntKind:
		i, _ := v.Int()
		return fmt.Sprintf("%d", i)
	case FloatKind:
		f, _ := v.Number()
		return fmt.Sprintf("%.6g", f)
	case StringKind:
		s, _ := v.Str()
		return quote(s)
	}
	return quote(v.String())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteCSV writes a header line of quoted column names followed by
// one line per point.
func WriteCSV(w io.Writer, t *Table) error {
	out := bufio.NewWriter(w)
	cells := make([]string, len(t.Names))
	for j, name := range t.Names {
		cells[j] = quote(name)
	}
	if _, err := fmt.Fprintln(out, strings.Join(cells, ",")); err != nil {
		return err
	}
	for i := 0; i < t.Rows; i++ {
		for j, v := range t.Row(i) {
			cells[j] = Cell(v)
		}
		if _, err := fmt.Fprintln(out, strings.Join(cells, ",")); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteTable writes right-aligned columns separated by spaces.
func WriteTable(w io.Writer, t *Table) error {
	widths := make([]int, len(t.Names))
	for j, name := range t.Names {
		widths[j] = len(name)
		for _, v := range t.Columns[name] {
			if n := len(Cell(v)); widths[j] < n {
				widths[j] = n
			}
		}
	}

	out := bufio.NewWriter(w)
	cells := make([]string, len(t.Names))
	line := func() error {
		_, err := fmt.Fprintln(out, strings.Join(cells, " "))
		return err
	}

	for j, name := range t.Names {
		cells[j] = fmt.Sprintf("%*s", widths[j], name)
	}
	if err := line(); err != nil {
		return err
	}
	for i := 0; i < t.Rows; i++ {
		for j, v := range t.Row(i) {
			cells[j] = fmt.Sprintf("%*s", widths[j], Cell(v))
		}
		if err := line(); err != nil {
			return err
		}
	}
	return out.Flush()
}
