package term

import (
	"bufio"
	"io"

	"golang.org/x/term"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
)

const (
	home      = "\x1b[H"
	clearScr  = "\x1b[2J"
	hideCurs  = "\x1b[?25l"
	showCurs  = "\x1b[?25h"
	clearLine = "\x1b[K"
)

// Rows is the number of text rows the display needs, two pixels per cell
// plus one status line.
const Rows = cpu.Height/2 + 1

// Fits reports whether the terminal on fd can show a whole frame.
func Fits(fd int) bool {
	w, h, err := term.GetSize(fd)
	return err == nil && w >= cpu.Width && h >= Rows
}

// Renderer redraws the display in place. Lines end in CRLF since the
// terminal is in raw mode.
type Renderer struct {
	w     *bufio.Writer
	first bool
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: bufio.NewWriter(w), first: true}
}

// Draw writes one frame followed by the status line.
func (r *Renderer) Draw(fb *cpu.Framebuffer, status string) error {
	if r.first {
		r.w.WriteString(clearScr + hideCurs)
		r.first = false
	}
	r.w.WriteString(home)
	for y := 0; y < cpu.Height; y += 2 {
		for x := 0; x < cpu.Width; x++ {
			r.w.WriteRune(cell(fb[y][x], fb[y+1][x]))
		}
		r.w.WriteString("\r\n")
	}
	r.w.WriteString(status + clearLine)
	return r.w.Flush()
}

// Close restores the cursor.
func (r *Renderer) Close() error {
	r.w.WriteString("\r\n" + showCurs)
	return r.w.Flush()
}

func cell(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}
