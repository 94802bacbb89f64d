package term

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/input"
)

func TestKeysHoldAndDecay(t *testing.T) {
	k := NewKeys(input.DefaultLayout, 2)
	k.Press('w') // key 5
	k.Press('X') // key 0, case folded

	pad := k.Frame()
	assert.True(t, pad[0x5])
	assert.True(t, pad[0x0])
	pad = k.Frame()
	assert.True(t, pad[0x5])
	pad = k.Frame()
	assert.False(t, pad.Any())

	k.Press('w')
	assert.True(t, k.Frame()[0x5])
}

func TestKeysCommandsAndQuit(t *testing.T) {
	k := NewKeys(input.DefaultLayout, 0)
	k.Press('p')
	k.Press('n')
	assert.Equal(t, []byte("pn"), k.Commands())
	assert.Empty(t, k.Commands())
	assert.False(t, k.Quit())
	assert.False(t, k.Frame().Any())

	k.Press(0x03)
	assert.True(t, k.Quit())
}

func TestRendererHalfBlocks(t *testing.T) {
	var fb cpu.Framebuffer
	fb[0][0] = true
	fb[1][0] = true
	fb[0][1] = true
	fb[3][2] = true

	var out bytes.Buffer
	r := NewRenderer(&out)
	require.NoError(t, r.Draw(&fb, "status"))

	s := out.String()
	require.True(t, strings.HasPrefix(s, clearScr+hideCurs+home))
	body := strings.TrimPrefix(s, clearScr+hideCurs+home)
	lines := strings.Split(body, "\r\n")
	require.Len(t, lines, Rows)
	assert.True(t, strings.HasPrefix(lines[0], "█▀ "))
	assert.True(t, strings.HasPrefix(lines[1], "  ▄ "))
	assert.Equal(t, cpu.Width, len([]rune(lines[0])))
	assert.Equal(t, "status"+clearLine, lines[Rows-1])

	out.Reset()
	require.NoError(t, r.Draw(&fb, ""))
	assert.True(t, strings.HasPrefix(out.String(), home))
}

func newMachine(t *testing.T, program []byte) *emu.Machine {
	t.Helper()
	m := emu.New(emu.Config{Logger: log.New(io.Discard, "", 0)})
	require.NoError(t, m.LoadProgram(program))
	return m
}

func TestLoopReturnsHalt(t *testing.T) {
	m := newMachine(t, []byte{0x22, 0x00}) // CALL $200 until the stack overflows
	k := NewKeys(input.DefaultLayout, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := Loop(ctx, m, k, NewRenderer(io.Discard), 1000)
	assert.ErrorIs(t, err, cpu.ErrStackOverflow)
}

func TestLoopQuitAndPause(t *testing.T) {
	m := newMachine(t, []byte{0x12, 0x00}) // JP $200
	k := NewKeys(input.DefaultLayout, 0)
	k.Press('p')

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, Loop(ctx, m, k, NewRenderer(io.Discard), 1000))
	assert.Zero(t, m.Frames())

	k.Press(esc)
	require.NoError(t, Loop(context.Background(), m, k, NewRenderer(io.Discard), 1000))
}
