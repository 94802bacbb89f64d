package cpu

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/bus"
)

const (
	Width  = 64
	Height = 32

	NumRegisters = 16
	StackDepth   = 16

	// ProgramStart is where programs are conventionally loaded and started.
	ProgramStart = 0x200
	// MaxProgramSize is the room left above ProgramStart (3584 bytes).
	MaxProgramSize = bus.Size - ProgramStart

	flagReg = 0xF
)

// Framebuffer is the 64x32 monochrome display, row-major.
type Framebuffer [Height][Width]bool

// Lit counts the pixels that are on.
func (fb Framebuffer) Lit() int {
	n := 0
	for y := range fb {
		for x := range fb[y] {
			if fb[y][x] {
				n++
			}
		}
	}
	return n
}

// State is the engine state seen by the next Cycle call.
type State uint8

const (
	Running State = iota
	WaitingForKey
	SingleStepPaused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForKey:
		return "waiting-for-key"
	case SingleStepPaused:
		return "single-step"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// CPU is a CHIP-8 interpreter core. It owns its memory, registers, timers
// and framebuffer; callers drive it with Load once and Cycle repeatedly.
type CPU struct {
	mem *bus.Bus

	v     [NumRegisters]byte
	i     uint16
	pc    uint16
	stack [StackDepth]uint16
	sp    uint8

	timers Timers
	latch  keyLatch
	paused bool
	keys   Keypad

	fb Framebuffer

	debug  DebugLevel
	rnd    func() byte
	log    *log.Logger
	cycles uint64
	fault  error
}

// Option configures a CPU at construction.
type Option func(*CPU)

// WithLogger routes diagnostics and debug output to l.
func WithLogger(l *log.Logger) Option {
	return func(c *CPU) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDebug sets the debug level (see DebugLevel).
func WithDebug(level DebugLevel) Option {
	return func(c *CPU) { c.debug = level }
}

// WithRandom replaces the byte source used by RND.
func WithRandom(src func() byte) Option {
	return func(c *CPU) {
		if src != nil {
			c.rnd = src
		}
	}
}

// New creates a zeroed CPU. The font table is installed by Load.
func New(opts ...Option) *CPU {
	c := &CPU{
		mem: bus.New(),
		rnd: randomByte,
		log: log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func randomByte() byte { return byte(rand.Intn(256)) }

// Load copies size bytes of program into memory at start, installs the
// font table at FontBase and points PC at start.
func (c *CPU) Load(program []byte, size, start int) error {
	if start < 0 || start >= bus.Size || start%2 != 0 {
		return fmt.Errorf("%w: %#x", ErrBadLoadOffset, start)
	}
	if size < 0 || size > len(program) {
		return fmt.Errorf("%w: size %d, buffer holds %d", ErrShortProgram, size, len(program))
	}
	if size > MaxProgramSize || start+size > bus.Size {
		return fmt.Errorf("%w: %d bytes at %#x", ErrProgramTooLarge, size, start)
	}
	if err := c.mem.WriteBlock(FontBase, fontSet[:]); err != nil {
		return err
	}
	if err := c.mem.WriteBlock(start, program[:size]); err != nil {
		return err
	}
	c.pc = uint16(start)
	if c.debug >= DebugStep {
		c.paused = true
	}
	return nil
}

// Err returns the fatal error that halted the CPU, if any.
func (c *CPU) Err() error { return c.fault }

// State reports which state the next Cycle call starts in.
func (c *CPU) State() State {
	switch {
	case c.latch.pending:
		return WaitingForKey
	case c.paused:
		return SingleStepPaused
	}
	return Running
}

func (c *CPU) Registers() [NumRegisters]byte { return c.v }
func (c *CPU) Index() uint16                 { return c.i }
func (c *CPU) PC() uint16                    { return c.pc }
func (c *CPU) SP() uint8                     { return c.sp }
func (c *CPU) DelayTimer() byte              { return c.timers.Delay }
func (c *CPU) SoundTimer() byte              { return c.timers.Sound }
func (c *CPU) Cycles() uint64                { return c.cycles }
func (c *CPU) Framebuffer() Framebuffer      { return c.fb }

// Stack returns the return addresses in use, oldest first.
func (c *CPU) Stack() []uint16 {
	out := make([]uint16, c.sp)
	copy(out, c.stack[:c.sp])
	return out
}

// Peek reads memory for debuggers. Out-of-range reads return an error.
func (c *CPU) Peek(addr uint16) (byte, error) { return c.mem.Read(addr) }
