package cpu

import (
	"fmt"
	"io"
	"strings"
)

// DebugLevel selects how much the CPU reports while running. Levels are
// cumulative.
type DebugLevel uint8

const (
	DebugOff   DebugLevel = iota // silent
	DebugTrace                   // one line per executed instruction
	DebugDump                    // full state dump before each instruction
	DebugStep                    // pause after every instruction until a key is pressed
)

// ParseDebugLevel validates a numeric level from configuration.
func ParseDebugLevel(n int) (DebugLevel, error) {
	if n < int(DebugOff) || n > int(DebugStep) {
		return DebugOff, fmt.Errorf("cpu: debug level %d not in 0..3", n)
	}
	return DebugLevel(n), nil
}

func (c *CPU) trace(in Instruction) {
	if c.debug == DebugOff {
		return
	}
	c.log.Printf("cpu: %04X %04X  %s", c.pc, in.Word, in)
	if c.debug >= DebugDump {
		var sb strings.Builder
		_ = c.DumpState(&sb)
		c.log.Print(sb.String())
	}
}

// Snapshot is a copy of the visible CPU state.
type Snapshot struct {
	V      [NumRegisters]byte
	I      uint16
	PC     uint16
	SP     uint8
	Stack  []uint16
	Delay  byte
	Sound  byte
	State  State
	Cycles uint64
}

func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		V:      c.v,
		I:      c.i,
		PC:     c.pc,
		SP:     c.sp,
		Stack:  c.Stack(),
		Delay:  c.timers.Delay,
		Sound:  c.timers.Sound,
		State:  c.State(),
		Cycles: c.cycles,
	}
}

// DumpState writes registers, I, PC, stack, timers and the framebuffer
// in a human readable form.
func (c *CPU) DumpState(w io.Writer) error {
	s := c.Snapshot()
	var sb strings.Builder
	for i, v := range s.V {
		fmt.Fprintf(&sb, "V%X=%02X", i, v)
		if i%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	fmt.Fprintf(&sb, "I=%04X PC=%04X SP=%d DT=%02X ST=%02X state=%s\n", s.I, s.PC, s.SP, s.Delay, s.Sound, s.State)
	sb.WriteString("stack:")
	for _, a := range s.Stack {
		fmt.Fprintf(&sb, " %04X", a)
	}
	sb.WriteByte('\n')
	sb.WriteString(c.fb.Text())
	_, err := io.WriteString(w, sb.String())
	return err
}

// Text renders the framebuffer as '#' and '.' rows.
func (fb Framebuffer) Text() string {
	var sb strings.Builder
	sb.Grow(Height * (Width + 1))
	for y := range fb {
		for x := range fb[y] {
			if fb[y][x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Line is one disassembled word of a program listing.
type Line struct {
	Addr uint16
	Instruction
}

func (l Line) String() string {
	return fmt.Sprintf("%04X  %04X  %s", l.Addr, l.Word, l.Instruction)
}

// Disassemble decodes program word by word as if loaded at start. Data
// embedded in code decodes as whatever instruction it happens to match;
// a trailing odd byte is ignored.
func Disassemble(program []byte, start uint16) []Line {
	lines := make([]Line, 0, len(program)/2)
	for off := 0; off+1 < len(program); off += 2 {
		word := uint16(program[off])<<8 | uint16(program[off+1])
		lines = append(lines, Line{Addr: start + uint16(off), Instruction: Decode(word)})
	}
	return lines
}
