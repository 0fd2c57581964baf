package traj

// emitter receives the Context at each leaf after the file policy
// has run.
type emitter func(c *Context) error

func runLoops(ls []*Loop, c *Context, emit emitter) error {
	for _, l := range ls {
		if err := l.run(c, emit); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) run(outer *Context, emit emitter) error {
	gens, err := l.generators(outer)
	if err != nil {
		return err
	}
	return l.iterate(outer, gens, emit)
}

// generators makes the Generators for one pass.  Ranges are realized
// here, against the enclosing scope.
func (l *Loop) generators(outer *Context) ([]Generator, error) {
	gens := make([]Generator, len(l.Vary))
	loopLen := 0
	for i, v := range l.Vary {
		g, err := v.Generator(outer, i == 0, loopLen)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			loopLen = g.Len()
		}
		gens[i] = g
	}
	return gens, nil
}

// iterate steps the generators in lock-step.  Each step gets its own
// copy of the enclosing scope.  The first generator governs the
// number of steps.
func (l *Loop) iterate(outer *Context, gens []Generator, emit emitter) error {
	for step := 0; ; step++ {
		if err := outer.ctx.Err(); err != nil {
			return err
		}

		c := outer.Copy()
		for i, g := range gens {
			x, err := g.Next(c)
			if err == ErrExhausted {
				if i == 0 {
					return nil
				}
				return &InconsistentLoop{
					Name: l.Vary[i].Name,
					Step: step,
				}
			}
			if err != nil {
				return err
			}
			l.Vary[i].Bind(c, x)
		}

		var err error
		if 0 < len(l.Loops) {
			err = runLoops(l.Loops, c, emit)
		} else {
			err = c.leaf(emit)
		}
		outer.adopt(c)
		if err != nil {
			return err
		}
	}
}

// leaf runs the file policy, emits, and then advances the point
// counters.
func (c *Context) leaf(emit emitter) error {
	if err := c.setFile(); err != nil {
		return err
	}
	if err := emit(c); err != nil {
		return err
	}
	return c.nextPoint()
}
