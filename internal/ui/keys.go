package ui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/input"
)

var runeKeys = map[rune]ebiten.Key{
	'0': ebiten.KeyDigit0, '1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3,
	'4': ebiten.KeyDigit4, '5': ebiten.KeyDigit5, '6': ebiten.KeyDigit6, '7': ebiten.KeyDigit7,
	'8': ebiten.KeyDigit8, '9': ebiten.KeyDigit9,
	'a': ebiten.KeyA, 'b': ebiten.KeyB, 'c': ebiten.KeyC, 'd': ebiten.KeyD, 'e': ebiten.KeyE,
	'f': ebiten.KeyF, 'g': ebiten.KeyG, 'h': ebiten.KeyH, 'i': ebiten.KeyI, 'j': ebiten.KeyJ,
	'k': ebiten.KeyK, 'l': ebiten.KeyL, 'm': ebiten.KeyM, 'n': ebiten.KeyN, 'o': ebiten.KeyO,
	'p': ebiten.KeyP, 'q': ebiten.KeyQ, 'r': ebiten.KeyR, 's': ebiten.KeyS, 't': ebiten.KeyT,
	'u': ebiten.KeyU, 'v': ebiten.KeyV, 'w': ebiten.KeyW, 'x': ebiten.KeyX, 'y': ebiten.KeyY,
	'z': ebiten.KeyZ,
}

// pollKeypad maps the held keyboard keys onto the 16 keypad lines.
func pollKeypad(layout input.Layout) cpu.Keypad {
	return layout.Poll(func(r rune) bool {
		k, ok := runeKeys[r]
		return ok && ebiten.IsKeyPressed(k)
	})
}
