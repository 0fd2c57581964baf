/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/reflectometry/scattio/traj"
)

type MermaidOpts struct {
	// ShowSpecs will add each vary entry's spec as JSON to the
	// loop's label.
	ShowSpecs bool `json:"showSpecs"`

	// LeafFill is the fill color for innermost loops.
	LeafFill string `json:"leafFill,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the trajectory's loop tree.
func Mermaid(t *traj.Trajectory, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			ShowSpecs: true,
			LeafFill:  "#bcf2db",
		}
	}

	fmt.Fprintf(w, "graph TB\n")
	fmt.Fprintf(w, "  n0((\"%s\"))\n", t.DefaultName())

	num := 0
	var process func(parent string, ls []*traj.Loop) error
	process = func(parent string, ls []*traj.Loop) error {
		for _, l := range ls {
			num++
			nid := fmt.Sprintf("n%d", num)

			lines := make([]string, 0, len(l.Vary)+1)
			lines = append(lines, l.Where)
			for _, v := range l.Vary {
				line := v.Name + ": " + v.Kind.String()
				if opts.ShowSpecs {
					js, err := v.Spec.MarshalJSON()
					if err != nil {
						return err
					}
					line += " " + strings.Replace(string(js), `"`, `'`, -1)
				}
				lines = append(lines, line)
			}
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, strings.Join(lines, "<br/>"))
			if len(l.Loops) == 0 && opts.LeafFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.LeafFill)
			}
			fmt.Fprintf(w, "  %s --> %s\n", parent, nid)

			if err := process(nid, l.Loops); err != nil {
				return err
			}
		}
		return nil
	}

	if err := process("n0", t.Loops()); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n")
	log.Printf("mermaid gen done")

	return w.Close()
}
