package term

import (
	"context"
	"fmt"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
)

// Loop drives m at fps frames per second, drawing each frame with r, until
// ctx is done, the user quits, or the CPU halts. A halt is returned as the
// error. Besides the keypad the terminal understands p (pause), n (step a
// frame while paused) and o (reset).
func Loop(ctx context.Context, m *emu.Machine, keys *Keys, r *Renderer, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()

	paused := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
		}
		if keys.Quit() {
			return nil
		}
		step := !paused
		for _, c := range keys.Commands() {
			switch c {
			case 'p':
				paused = !paused
				step = !paused
			case 'n':
				step = true
			case 'o':
				if err := m.Reset(); err != nil {
					return err
				}
			}
		}
		m.SetKeys(keys.Frame())
		var err error
		if step {
			err = m.StepFrame()
		}
		fb := m.Screen()
		if derr := r.Draw(&fb, status(m, paused)); derr != nil {
			return derr
		}
		if err != nil {
			return err
		}
	}
}

func status(m *emu.Machine, paused bool) string {
	s := fmt.Sprintf("%s  frame %d", m.ROMName(), m.Frames())
	if paused {
		s += "  [paused]"
	}
	if m.Sounding() {
		s += "  BEEP"
	}
	return s + "  p:pause n:step o:reset esc:quit"
}
