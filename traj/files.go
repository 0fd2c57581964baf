package traj

// setFile evaluates the file group.  A group that hasn't been seen
// before starts a new file.  Then the file prefix, file name, and
// entry name are evaluated in that order.
func (c *Context) setFile() error {
	group, err := c.Eval(c.pattern("fileGroup"))
	if err != nil {
		return err
	}
	js, err := group.MarshalJSON()
	if err != nil {
		return err
	}
	key := string(js)
	if !c.priv.groups[key] {
		c.priv.groups[key] = true
		if err := c.incr("fileNum"); err != nil {
			return err
		}
		if err := c.incr("instFileNum"); err != nil {
			return err
		}
		c.logf("new file group %s", key)
	}
	c.Assign("fileGroup", group)

	for _, name := range patternKeywords[1:] {
		v, err := c.Eval(c.pattern(name))
		if err != nil {
			return err
		}
		c.Assign(name, v)
	}
	return nil
}

func (c *Context) nextPoint() error {
	if err := c.incr("pointNum"); err != nil {
		return err
	}
	return c.incr("expPointNum")
}

// pattern returns the stored filename pattern.
func (c *Context) pattern(name string) Value {
	if v, have := c.priv.patterns[name]; have {
		return v
	}
	return NewString(DefaultPatterns[name])
}

// SetPattern stores an unevaluated filename pattern.
func (c *Context) SetPattern(name string, x Value) {
	c.priv.patterns[name] = x
}

// Groups returns the number of distinct file groups seen so far.
func (c *Context) Groups() int {
	return len(c.priv.groups)
}
