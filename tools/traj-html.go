package tools

import (
	"context"
	"fmt"
	"io"

	"github.com/reflectometry/scattio/traj"

	md "github.com/russross/blackfriday/v2"
)

// RenderTrajectoryHTML writes the description (as markdown), the
// directives, and the loop tree of a trajectory.  If r isn't nil, its
// description and point count are used.
func RenderTrajectoryHTML(t *traj.Trajectory, r *traj.Run, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	if r != nil {
		f(`<div class="trajDoc doc">%s</div>`, md.Run([]byte(r.Descr)))
		f(`<div class="summary"><span class="count">%d</span> points</div>`, r.Count)
	}

	f(`<div class="directives"><table>`)
	for _, d := range t.Directives {
		if d.Keyword == "loops" {
			continue
		}
		f(`<tr class="directive"><td><span class="keyword">%s</span></td>`, d.Keyword)
		f(`<td><code>%s</code></td></tr>`, html(d.Value.String()))
	}
	f(`</table></div>`)

	var loops func(ls []*traj.Loop)
	loops = func(ls []*traj.Loop) {
		f(`<div class="loops">`)
		f(`<table>`)
		for i, l := range ls {
			f(`<tr class="loop"><td><div class="loopNum">%d</div></td><td>`, i)
			f(`<div class="where">%s</div>`, l.Where)
			f(`<table class="vary">`)
			for _, v := range l.Vary {
				f(`<tr><td><span class="varyName">%s</span></td><td>%s</td>`, html(v.Name), v.Kind)
				f(`<td><code>%s</code></td></tr>`, html(v.Spec.String()))
			}
			f(`</table>`)
			if 0 < len(l.Loops) {
				loops(l.Loops)
			}
			f(`</td></tr>`)
		}
		f(`</table>`)
		f(`</div>`)
	}
	loops(t.Loops())

	return nil
}

func RenderTrajectoryPage(t *traj.Trajectory, r *traj.Run, out io.Writer, cssFiles []string) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/traj-html.css"}
	}

	name := t.DefaultName()
	if r != nil && r.TrajName != "" {
		name = r.TrajName
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html(name))

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html(name))

	if err := RenderTrajectoryHTML(t, r, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderTrajectoryPage loads the trajectory and does a dry
// run to get its description and point count.
func ReadAndRenderTrajectoryPage(ctx context.Context, filename string, cssFiles []string, out io.Writer) error {
	t, err := traj.Load(filename)
	if err != nil {
		return err
	}

	r, err := t.Run(ctx, nil, nil)
	if err != nil {
		return err
	}

	return RenderTrajectoryPage(t, r, out, cssFiles)
}
