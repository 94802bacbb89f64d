package ui

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
)

// main menu rows
const (
	itemResume = iota
	itemLoad
	itemPalette
	itemScale
	itemOverlay
	itemKeys
	itemQuit
	numItems
)

const maxScale = 20

func (a *App) updateMainMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < numItems-1 {
		a.menuIdx++
	}
	left := inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft)
	right := inpututil.IsKeyJustPressed(ebiten.KeyArrowRight)
	enter := inpututil.IsKeyJustPressed(ebiten.KeyEnter)

	switch a.menuIdx {
	case itemResume:
		if enter {
			a.showMenu = false
		}
	case itemLoad:
		if enter {
			list, err := cart.Find(a.cfg.ROMsDir)
			if err != nil {
				a.toast("Cannot read " + a.cfg.ROMsDir + ": " + err.Error())
			}
			a.romList = list
			a.romSel = 0
			a.romOff = 0
			a.menuMode = "rom"
		}
	case itemPalette:
		if left || right || enter {
			d := 1
			if left {
				d = -1
			}
			a.cyclePalette(d)
		}
	case itemScale:
		if left && a.cfg.Scale > 1 {
			a.cfg.Scale--
			a.applyWindowSize()
		}
		if right && a.cfg.Scale < maxScale {
			a.cfg.Scale++
			a.applyWindowSize()
		}
	case itemOverlay:
		if left || right || enter {
			a.overlay = !a.overlay
		}
	case itemKeys:
		if enter {
			a.menuMode = "keys"
			a.keysOff = 0
		}
	case itemQuit:
		if enter {
			a.quit = true
		}
	}
	// Back with Backspace
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.showMenu = false
	}
}

func (a *App) cyclePalette(d int) {
	names := ppu.PaletteNames()
	idx := slices.Index(names, a.m.Palette())
	idx = (idx + d + len(names)) % len(names)
	if err := a.m.SetPalette(names[idx]); err != nil {
		a.toast(err.Error())
		return
	}
	a.toast("Palette: " + names[idx])
}

func (a *App) updateRomMenu() {
	n := len(a.romList)
	if n == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
			a.menuMode = "main"
		}
		return
	}
	// keep the selection inside the visible window
	maxRows := a.rowsFrom(romListY)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.romSel > 0 {
		a.romSel--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.romSel < n-1 {
		a.romSel++
	}
	if a.romSel < a.romOff {
		a.romOff = a.romSel
	}
	if a.romSel >= a.romOff+maxRows {
		a.romOff = a.romSel - maxRows + 1
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		a.loadROM(a.romList[a.romSel])
		a.menuMode = "main"
		a.showMenu = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}

func (a *App) updateKeysMenu() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.keysOff > 0 {
		a.keysOff--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.keysOff++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		a.menuMode = "main"
	}
}
