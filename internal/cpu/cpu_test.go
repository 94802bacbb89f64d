package cpu

import (
	"bytes"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(ws ...uint16) []byte {
	out := make([]byte, 0, 2*len(ws))
	for _, w := range ws {
		out = append(out, byte(w>>8), byte(w))
	}
	return out
}

func newCPU(t *testing.T, program []byte, opts ...Option) *CPU {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	c := New(opts...)
	require.NoError(t, c.Load(program, len(program), ProgramStart))
	return c
}

func run(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := c.Cycle(Keypad{})
		require.NoError(t, err, "cycle %d", i)
	}
}

func TestCPU_Load(t *testing.T) {
	assert := assert.New(t)

	c := newCPU(t, []byte{0x12, 0x34, 0x56})
	assert.Equal(uint16(ProgramStart), c.PC())
	b, err := c.Peek(0x202)
	assert.NoError(err)
	assert.Equal(byte(0x56), b)

	// Font glyph for 0 at 0..4, F at 75..79
	for i, want := range []byte{0xF0, 0x90, 0x90, 0x90, 0xF0} {
		got, _ := c.Peek(uint16(i))
		assert.Equal(want, got, "font byte %d", i)
	}
	last, _ := c.Peek(79)
	assert.Equal(byte(0x80), last)
	assert.Equal(Running, c.State())
}

func TestCPU_LoadRejects(t *testing.T) {
	big := make([]byte, MaxProgramSize+1)
	c := New()
	assert.ErrorIs(t, c.Load(big, len(big), ProgramStart), ErrProgramTooLarge)
	assert.ErrorIs(t, c.Load(big, MaxProgramSize, 0x400), ErrProgramTooLarge)
	assert.ErrorIs(t, c.Load(big, 2, 0x201), ErrBadLoadOffset)
	assert.ErrorIs(t, c.Load(big, 2, 0x1000), ErrBadLoadOffset)
	assert.ErrorIs(t, c.Load(big[:4], 8, ProgramStart), ErrShortProgram)

	// The full program region fits exactly.
	assert.NoError(t, c.Load(big, MaxProgramSize, ProgramStart))
}

func TestCPU_RegisterIdentity(t *testing.T) {
	for r := uint16(0); r < NumRegisters; r++ {
		for _, v := range []uint16{0x00, 0x01, 0x7F, 0x80, 0xFF} {
			c := newCPU(t, words(0x6000|r<<8|v, 0x8000|r<<8|r<<4))
			run(t, c, 2)
			assert.Equal(t, byte(v), c.Registers()[r], "V%X=%02X", r, v)
		}
	}
}

func TestCPU_AddImmediateWrapsWithoutFlag(t *testing.T) {
	c := newCPU(t, words(0x60FF, 0x6F07, 0x7002))
	run(t, c, 3)
	v := c.Registers()
	assert.Equal(t, byte(0x01), v[0])
	assert.Equal(t, byte(0x07), v[0xF], "VF must be untouched")
}

func TestCPU_ALU(t *testing.T) {
	tests := []struct {
		name      string
		op        uint16 // 8xyN with x=0, y=1
		x, y      byte
		want, vf  byte
		checkFlag bool
	}{
		{"add carry", 0x8014, 250, 10, 4, 1, true},
		{"add no carry", 0x8014, 10, 10, 20, 0, true},
		{"sub no borrow", 0x8015, 10, 3, 7, 1, true},
		{"sub borrow", 0x8015, 3, 10, 249, 0, true},
		{"sub equal", 0x8015, 5, 5, 0, 1, true},
		{"subn no borrow", 0x8017, 3, 10, 7, 1, true},
		{"subn borrow", 0x8017, 10, 3, 249, 0, true},
		{"shr", 0x8016, 0b00000101, 0, 0b00000010, 1, true},
		{"shr even", 0x8016, 0b00000100, 0, 0b00000010, 0, true},
		{"shl", 0x801E, 0x81, 0, 0x02, 1, true},
		{"shl no msb", 0x801E, 0x41, 0, 0x82, 0, true},
		{"or", 0x8011, 0xF0, 0x0F, 0xFF, 0, false},
		{"and", 0x8012, 0xF0, 0x3C, 0x30, 0, false},
		{"xor", 0x8013, 0xFF, 0x0F, 0xF0, 0, false},
		{"ld", 0x8010, 0x11, 0x22, 0x22, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCPU(t, words(0x6000|uint16(tt.x), 0x6100|uint16(tt.y), tt.op))
			run(t, c, 3)
			v := c.Registers()
			assert.Equal(t, tt.want, v[0])
			if tt.checkFlag {
				assert.Equal(t, tt.vf, v[0xF])
			}
		})
	}
}

func TestCPU_FlagWinsWhenVFIsDestination(t *testing.T) {
	// VF=200, V1=100; ADD VF, V1 -> sum 300 carries, VF ends as the flag.
	c := newCPU(t, words(0x6FC8, 0x6164, 0x8F14))
	run(t, c, 3)
	assert.Equal(t, byte(1), c.Registers()[0xF])
}

func TestCPU_Skips(t *testing.T) {
	tests := []struct {
		name   string
		prog   []byte
		wantPC uint16
	}{
		{"se imm taken", words(0x6005, 0x3005), 0x206},
		{"se imm not taken", words(0x6005, 0x3006), 0x204},
		{"sne imm taken", words(0x6005, 0x4006), 0x206},
		{"se reg taken", words(0x6005, 0x6105, 0x5010), 0x208},
		{"sne reg not taken", words(0x6005, 0x6105, 0x9010), 0x206},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCPU(t, tt.prog)
			run(t, c, len(tt.prog)/2)
			assert.Equal(t, tt.wantPC, c.PC())
		})
	}
}

func TestCPU_JumpAndJumpV0(t *testing.T) {
	c := newCPU(t, words(0x1208))
	run(t, c, 1)
	assert.Equal(t, uint16(0x208), c.PC())

	c = newCPU(t, words(0x6004, 0xB300))
	run(t, c, 2)
	assert.Equal(t, uint16(0x304), c.PC())
}

func TestCPU_JumpToOddAddress(t *testing.T) {
	// 0x200: JP $203; 0x203: LD V0, $42
	c := newCPU(t, []byte{0x12, 0x03, 0x00, 0x60, 0x42})
	run(t, c, 1)
	assert.Equal(t, uint16(0x203), c.PC())
	run(t, c, 1)
	assert.Equal(t, byte(0x42), c.Registers()[0])
	assert.Equal(t, uint16(0x205), c.PC())
	assert.NoError(t, c.Err())
}

func TestCPU_CallReturn(t *testing.T) {
	prog := make([]byte, 0x102)
	copy(prog, words(0x2300))
	copy(prog[0x100:], words(0x00EE))
	c := newCPU(t, prog)

	run(t, c, 1)
	assert.Equal(t, uint16(0x300), c.PC())
	assert.Equal(t, []uint16{0x200}, c.Stack())
	assert.Equal(t, uint8(1), c.SP())

	run(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC(), "return resumes after the call")
	assert.Equal(t, uint8(0), c.SP())
}

func TestCPU_NestedCallsToFullDepth(t *testing.T) {
	// Frame k at 0x200+4k: CALL next frame; RET. The innermost frame returns.
	var ws []uint16
	for k := 0; k < StackDepth; k++ {
		ws = append(ws, 0x2000|uint16(0x200+4*(k+1)), 0x00EE)
	}
	ws = append(ws, 0x00EE)
	c := newCPU(t, words(ws...))

	run(t, c, StackDepth)
	assert.Equal(t, uint8(StackDepth), c.SP())
	assert.Equal(t, uint16(0x200+4*StackDepth), c.PC())

	run(t, c, StackDepth)
	assert.Equal(t, uint8(0), c.SP())
	assert.Equal(t, uint16(0x202), c.PC())
}

func TestCPU_StackOverflowIsFatal(t *testing.T) {
	c := newCPU(t, words(0x2200)) // CALL self forever
	run(t, c, StackDepth)

	_, err := c.Cycle(Keypad{})
	require.ErrorIs(t, err, ErrStackOverflow)
	assert.Equal(t, uint8(StackDepth), c.SP())
	for _, a := range c.Stack() {
		assert.Equal(t, uint16(0x200), a)
	}

	// Halted: the same error again, nothing executes.
	_, again := c.Cycle(Keypad{})
	assert.Equal(t, err, again)
	assert.Equal(t, err, c.Err())
}

func TestCPU_ReturnWithEmptyStack(t *testing.T) {
	var buf bytes.Buffer
	c := newCPU(t, words(0x00EE), WithLogger(log.New(&buf, "", 0)))
	run(t, c, 2)
	assert.Equal(t, uint16(0x200), c.PC())
	assert.Contains(t, buf.String(), "empty call stack")
	assert.NoError(t, c.Err())
}

func TestCPU_UnknownAndSysAreNoOps(t *testing.T) {
	var buf bytes.Buffer
	c := newCPU(t, words(0x5001, 0x0123, 0xE0FF, 0xF0FF), WithLogger(log.New(&buf, "", 0)))
	before := c.Registers()
	run(t, c, 4)
	assert.Equal(t, uint16(0x208), c.PC())
	assert.Equal(t, before, c.Registers())
	assert.Contains(t, buf.String(), "unknown instruction 5001")
	assert.Contains(t, buf.String(), "SYS $123")
}

func TestCPU_Random(t *testing.T) {
	c := newCPU(t, words(0xC00F), WithRandom(func() byte { return 0xAB }))
	run(t, c, 1)
	assert.Equal(t, byte(0x0B), c.Registers()[0])

	// Real source: only the mask is observable.
	for i := 0; i < 32; i++ {
		c := newCPU(t, words(0xC3A5))
		run(t, c, 1)
		assert.Zero(t, c.Registers()[3]&^0xA5)
	}
}

func TestCPU_IndexOps(t *testing.T) {
	c := newCPU(t, words(0xA123))
	run(t, c, 1)
	assert.Equal(t, uint16(0x123), c.Index())

	c = newCPU(t, words(0x600A, 0xF029))
	run(t, c, 2)
	assert.Equal(t, uint16(50), c.Index())

	c = newCPU(t, words(0x6020, 0xF01E))
	c.i = 0xFFF0
	run(t, c, 2)
	assert.Equal(t, uint16(0x0010), c.Index(), "ADD I wraps at 16 bits")
}

func TestCPU_BCD(t *testing.T) {
	c := newCPU(t, words(0x60EA, 0xA300, 0xF033)) // V0=234
	run(t, c, 3)
	for i, want := range []byte{2, 3, 4} {
		got, _ := c.Peek(0x300 + uint16(i))
		assert.Equal(t, want, got)
	}
}

func TestCPU_BCDOutOfBoundsIsFatal(t *testing.T) {
	c := newCPU(t, words(0xAFFF, 0xF033))
	run(t, c, 1)
	_, err := c.Cycle(Keypad{})
	require.ErrorIs(t, err, ErrMemoryBounds)

	var me *MemoryError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, uint16(0x202), me.PC)
	assert.Equal(t, uint16(0xF033), me.Word)
}

func TestCPU_StoreLoadRoundTrip(t *testing.T) {
	c := newCPU(t, words(0x6011, 0x6122, 0x6233, 0x6344, 0x6455, 0x6566, 0x6677, 0xA400, 0xF555, 0xF565))
	run(t, c, 9)
	want := c.Registers()

	c.v = [NumRegisters]byte{}
	run(t, c, 1)
	got := c.Registers()
	assert.Equal(t, want[:6], got[:6])
	assert.Zero(t, got[6], "V6 lies outside the inclusive range")
	assert.Equal(t, uint16(0x400), c.Index())

	b, _ := c.Peek(0x405)
	assert.Equal(t, byte(0x66), b)
	b, _ = c.Peek(0x406)
	assert.Zero(t, b)
}

func TestCPU_BlockAccessPastEnd(t *testing.T) {
	c := newCPU(t, words(0xAFFE, 0xF265))
	run(t, c, 1)
	_, err := c.Cycle(Keypad{})
	assert.ErrorIs(t, err, ErrMemoryBounds)
}

func TestCPU_FetchOutsideMemory(t *testing.T) {
	c := newCPU(t, words(0x1FFF))
	run(t, c, 1)
	_, err := c.Cycle(Keypad{})
	require.ErrorIs(t, err, ErrMemoryBounds)
	var me *MemoryError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, uint16(0xFFF), me.PC)
}

func TestCPU_Timers(t *testing.T) {
	var tm Timers
	tm.Tick()
	assert.Equal(t, Timers{}, tm, "ticking zero timers keeps them at zero")

	// V0=3; DT=V0; ST=V0; then 4 more cycles
	c := newCPU(t, words(0x6003, 0xF015, 0xF018, 0x1206))
	run(t, c, 3)
	assert.Equal(t, byte(2), c.DelayTimer())
	assert.Equal(t, byte(3), c.SoundTimer())
	run(t, c, 5)
	assert.Zero(t, c.DelayTimer())
	assert.Zero(t, c.SoundTimer())

	c = newCPU(t, words(0x6005, 0xF015, 0xF107))
	run(t, c, 3)
	assert.Equal(t, byte(4), c.Registers()[1], "read happens after this cycle's tick")
}

func TestCPU_WaitForKey(t *testing.T) {
	c := newCPU(t, words(0x6009, 0xF015, 0xF30A, 0x6001))
	run(t, c, 3)
	require.Equal(t, WaitingForKey, c.State())
	assert.Equal(t, uint16(0x206), c.PC())

	before := c.Snapshot()
	fbBefore := c.Framebuffer()
	fb, err := c.Cycle(Keypad{})
	require.NoError(t, err)
	assert.Equal(t, fbBefore, fb)
	assert.Equal(t, before, c.Snapshot(), "polling without keys changes nothing, timers included")

	var keys Keypad
	keys[9], keys[5] = true, true
	_, err = c.Cycle(keys)
	require.NoError(t, err)
	assert.Equal(t, byte(5), c.Registers()[3], "lowest pressed key wins")
	assert.Equal(t, Running, c.State())
	assert.Equal(t, uint16(0x206), c.PC(), "the wait instruction is not fetched again")

	run(t, c, 1)
	assert.Equal(t, byte(1), c.Registers()[0])
}

func TestCPU_SkipOnKey(t *testing.T) {
	var keys Keypad
	keys[4] = true

	c := newCPU(t, words(0x6004, 0xE09E))
	run(t, c, 1)
	_, err := c.Cycle(keys)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x206), c.PC())

	c = newCPU(t, words(0x6004, 0xE0A1))
	run(t, c, 1)
	_, _ = c.Cycle(keys)
	assert.Equal(t, uint16(0x204), c.PC())

	// Register value beyond the keypad is never pressed.
	c = newCPU(t, words(0x6014, 0xE0A1))
	run(t, c, 2)
	assert.Equal(t, uint16(0x206), c.PC())
}

func TestCPU_SingleStep(t *testing.T) {
	c := newCPU(t, words(0x6001, 0x6102), WithDebug(DebugStep))
	require.Equal(t, SingleStepPaused, c.State())

	run(t, c, 3)
	assert.Equal(t, uint16(0x200), c.PC(), "no key, no progress")

	var keys Keypad
	keys[0xA] = true
	_, err := c.Cycle(keys)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x202), c.PC())
	assert.Equal(t, SingleStepPaused, c.State())

	run(t, c, 1)
	assert.Equal(t, uint16(0x202), c.PC())
	_, _ = c.Cycle(keys)
	assert.Equal(t, byte(2), c.Registers()[1])
}

func TestCPU_TraceLogging(t *testing.T) {
	var buf bytes.Buffer
	c := newCPU(t, words(0x6A02), WithLogger(log.New(&buf, "", 0)), WithDebug(DebugDump))
	run(t, c, 1)
	out := buf.String()
	assert.Contains(t, out, "0200 6A02  LD VA, $02")
	assert.Contains(t, out, "PC=0200")
	assert.Contains(t, out, "stack:")
}
