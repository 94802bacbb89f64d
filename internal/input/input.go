// Package input maps a QWERTY keyboard onto the 16-key hex keypad using the
// usual COSMAC VIP arrangement:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
package input

import (
	"unicode"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
)

// Layout holds the keyboard character for each keypad line, indexed by key value.
type Layout [cpu.NumKeys]rune

// DefaultLayout is the COSMAC VIP mapping shown in the package doc.
var DefaultLayout = Layout{
	0x0: 'x', 0x1: '1', 0x2: '2', 0x3: '3',
	0x4: 'q', 0x5: 'w', 0x6: 'e', 0x7: 'a',
	0x8: 's', 0x9: 'd', 0xA: 'z', 0xB: 'c',
	0xC: '4', 0xD: 'r', 0xE: 'f', 0xF: 'v',
}

// Key returns the keypad line bound to r.
func (l Layout) Key(r rune) (byte, bool) {
	r = unicode.ToLower(r)
	for k, c := range l {
		if c == r {
			return byte(k), true
		}
	}
	return 0, false
}

// Poll builds a keypad state by asking isDown about each bound character.
func (l Layout) Poll(isDown func(rune) bool) cpu.Keypad {
	var keys cpu.Keypad
	for k, c := range l {
		keys[k] = isDown(c)
	}
	return keys
}
