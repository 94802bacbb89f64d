// Package term runs the machine in a text terminal: the display is drawn
// with half-block characters and the keypad is read from raw stdin.
package term

import (
	"sync"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/input"
)

// DefaultHold is how many frames a key stays down after its byte arrives.
// Terminals report presses (and auto-repeat) but never releases.
const DefaultHold = 6

const (
	ctrlC = 0x03
	esc   = 0x1B
)

// Keys turns a stream of key bytes into a held keypad state.
type Keys struct {
	mu     sync.Mutex
	layout input.Layout
	hold   int
	left   [cpu.NumKeys]int
	quit   bool
	cmds   []byte
}

func NewKeys(layout input.Layout, hold int) *Keys {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Keys{layout: layout, hold: hold}
}

// Press records one byte read from the terminal. Bytes outside the layout
// are queued as commands for the front-end; Ctrl-C and Esc request quit.
func (k *Keys) Press(b byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch b {
	case ctrlC, esc:
		k.quit = true
		return
	}
	if key, ok := k.layout.Key(rune(b)); ok {
		k.left[key] = k.hold
		return
	}
	k.cmds = append(k.cmds, b)
}

// Frame returns the keypad for the next frame and ages every held key.
func (k *Keys) Frame() cpu.Keypad {
	k.mu.Lock()
	defer k.mu.Unlock()
	var pad cpu.Keypad
	for i, n := range k.left {
		if n > 0 {
			pad[i] = true
			k.left[i] = n - 1
		}
	}
	return pad
}

// Commands drains the non-keypad bytes seen since the last call.
func (k *Keys) Commands() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := k.cmds
	k.cmds = nil
	return out
}

func (k *Keys) Quit() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.quit
}
