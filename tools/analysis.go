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
	"sort"
	"strings"

	"github.com/reflectometry/scattio/traj"
)

// TrajAnalysis summarizes the structure of a trajectory without
// running it.
type TrajAnalysis struct {
	Errors []string

	Loops int

	// Depth is the deepest nesting of loops.
	Depth int

	// Leaves are the loops that emit points.
	Leaves int

	// Kinds counts vary entries by kind.
	Kinds map[string]int

	// Varied are the names assigned by vary entries.
	Varied []string

	// Constants are the names assigned by init.
	Constants []string

	// Shadowed are top-level init names that a vary entry reassigns,
	// wholly or by a dotted field.
	Shadowed []string

	// Duplicates are names given twice in one vary.
	Duplicates []string

	// Expressions are the string specs of scalar vary entries.
	Expressions []string
}

// Analyze walks the loop tree.
func Analyze(t *traj.Trajectory) (*TrajAnalysis, error) {
	a := TrajAnalysis{
		Errors: make([]string, 0, 8),
		Kinds:  make(map[string]int),
	}

	constants, varied := make(map[string]bool), make(map[string]bool)
	duplicates, exprs := make(map[string]bool), make(map[string]bool)

	for _, d := range t.Directives {
		if d.Keyword != "init" {
			continue
		}
		o, is := d.Value.Object()
		if !is {
			a.Errors = append(a.Errors, "init isn't an object")
			continue
		}
		for _, name := range o.Names() {
			constants[name] = true
		}
	}

	var walk func(ls []*traj.Loop, depth int)
	walk = func(ls []*traj.Loop, depth int) {
		for _, l := range ls {
			a.Loops++
			if a.Depth < depth {
				a.Depth = depth
			}
			if len(l.Loops) == 0 {
				a.Leaves++
			}
			if len(l.Vary) == 0 {
				a.Errors = append(a.Errors, fmt.Sprintf("%s has an empty vary", l.Where))
			}
			here := make(map[string]bool, len(l.Vary))
			for _, v := range l.Vary {
				a.Kinds[v.Kind.String()]++
				varied[v.Name] = true
				if here[v.Name] {
					duplicates[v.Name] = true
				}
				here[v.Name] = true
				if v.Kind == traj.ScalarVary {
					if s, is := v.Spec.Str(); is {
						exprs[s] = true
					}
				}
			}
			walk(l.Loops, depth+1)
		}
	}
	walk(t.Loops(), 1)

	tops := make(map[string]bool, len(constants))
	for name := range constants {
		tops[topName(name)] = true
	}
	shadowed := make(map[string]bool)
	for name := range varied {
		if top := topName(name); tops[top] {
			shadowed[top] = true
		}
	}

	a.Varied = keysToStringSlice(varied)
	a.Constants = keysToStringSlice(constants)
	a.Shadowed = keysToStringSlice(shadowed)
	a.Duplicates = keysToStringSlice(duplicates)
	a.Expressions = keysToStringSlice(exprs)

	return &a, nil
}

func topName(name string) string {
	if i := strings.IndexByte(name, '.'); 0 <= i {
		return name[:i]
	}
	return name
}

// keysToStringSlice returns the sorted keys of the map.
func keysToStringSlice(m map[string]bool) []string {
	list := make([]string, 0, len(m))
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
