package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/reflectometry/scattio/traj"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the trajectory's loop tree.
//
// The root node is the trajectory.  Each loop is a node that lists
// its vary entries with their specs rendered as YAML.  Innermost
// loops, which emit points, are dashed.
func Dot(t *traj.Trajectory, w io.WriteCloser) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	fmt.Fprintf(w, "  root [shape=\"note\", style=\"filled,bold\", color=\"black\", fillcolor=\"#99ddc8\", label=<%s>]\n",
		html(t.DefaultName()))

	num := 0
	var process func(parent string, ls []*traj.Loop) error
	process = func(parent string, ls []*traj.Loop) error {
		for i, l := range ls {
			num++
			id := fmt.Sprintf("n%d", num)

			label := l.Where
			for _, v := range l.Vary {
				label += `<BR ALIGN="LEFT"/><B>` + html(v.Name) + `</B> ` + v.Kind.String()
				bs, err := yaml.Marshal(v.Spec)
				if err != nil {
					bs = []byte(err.Error())
				}
				src := html(strings.TrimSpace(string(bs)))
				label += `<FONT POINT-SIZE="8"><BR ALIGN="LEFT"/>` +
					strings.Replace(src, "\n", `<BR ALIGN="LEFT"/>`, -1) +
					`</FONT>`
			}
			label += `<BR ALIGN="LEFT"/>`

			fillcolor := "#2d93ad"
			style := "filled"
			if len(l.Loops) == 0 {
				fillcolor = "#52aa5e"
				style += ",dashed"
			}
			fmt.Fprintf(w, "  %s [shape=\"record\", style=\"%s\", color=\"black\", fillcolor=\"%s\", label=<%s> ]\n",
				id, style, fillcolor, label)
			fmt.Fprintf(w, "  %s -> %s [ color=\"black\" label = <%d/%d> ]\n",
				parent, id, i+1, len(ls))

			if err := process(id, l.Loops); err != nil {
				return err
			}
		}
		return nil
	}

	ls := t.Loops()
	log.Printf("processing %d top-level loops", len(ls))
	if err := process("root", ls); err != nil {
		return err
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(t *traj.Trajectory, basename string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(t, dotfile); err != nil {
		return pngname, err
	}
	cmd := "dot -Tpng -Gstart=1 " + dotname + " > " + pngname
	if err := exec.Command("bash", "-c", cmd).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func html(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
