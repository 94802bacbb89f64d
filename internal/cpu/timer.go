package cpu

// Timers are the delay and sound countdown registers. They are ticked once
// per executed cycle rather than at a fixed 60 Hz, so program timing follows
// the rate at which the host calls Cycle.
type Timers struct {
	Delay byte
	Sound byte
}

// Tick decrements both counters, stopping at zero.
func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}

// Sounding reports whether the sound timer is still running. Nothing in the
// core produces audio; front-ends may show an indicator.
func (t Timers) Sounding() bool { return t.Sound > 0 }
