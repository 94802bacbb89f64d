package cpu

// Cycle runs one engine tick with the given keypad state and returns the
// framebuffer as it stands afterwards.
//
// While waiting for a key (Fx0A) the call only polls the keypad; the lowest
// pressed key is stored and execution resumes with the next call. In
// single-step mode a call without any key pressed does nothing. Otherwise
// the timers tick and exactly one instruction executes.
//
// A non-nil error is fatal: the CPU is halted and every later call returns
// the same error.
func (c *CPU) Cycle(keys Keypad) (Framebuffer, error) {
	if c.fault != nil {
		return c.fb, c.fault
	}
	c.keys = keys

	switch {
	case c.latch.pending:
		dest := c.latch.dest
		if c.latch.resolve(keys, &c.v) && c.debug >= DebugTrace {
			c.log.Printf("cpu: key %X -> V%X", c.v[dest], dest)
		}
		return c.fb, nil
	case c.paused:
		if !keys.Any() {
			return c.fb, nil
		}
		c.paused = false
	}

	c.timers.Tick()

	word, err := c.mem.Read16(c.pc)
	if err != nil {
		return c.halt(&MemoryError{PC: c.pc, Err: err})
	}
	in := Decode(word)
	c.trace(in)

	next, err := c.execute(in)
	if err != nil {
		return c.halt(err)
	}
	if next == advance {
		c.pc += 2
	}
	c.cycles++

	if c.debug >= DebugStep {
		c.paused = true
	}
	return c.fb, nil
}

func (c *CPU) halt(err error) (Framebuffer, error) {
	c.fault = err
	c.log.Printf("cpu: halted: %v", err)
	return c.fb, err
}
