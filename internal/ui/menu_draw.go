package ui

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
)

const (
	rowH      = 14 // debug font line height
	charW     = 6  // debug font glyph width
	romListY  = 40
	overlayPx = 4
)

var (
	shadeColor   = color.RGBA{0, 0, 0, 160}
	overlayColor = color.RGBA{255, 255, 255, 255}
	shade        *ebiten.Image
)

func keyRows() []string {
	return []string{
		"Keypad   1 2 3 C  <-  1 2 3 4",
		"         4 5 6 D  <-  Q W E R",
		"         7 8 9 E  <-  A S D F",
		"         A 0 B F  <-  Z X C V",
		"P: Pause",
		"N: Step one frame (when paused)",
		"F5: Reset program",
		"Tab: Register overlay",
		"F12: Screenshot",
		"Esc: Open/Close Menu",
	}
}

func (a *App) drawShade(screen *ebiten.Image, x, y, w, h int) {
	if shade == nil {
		shade = ebiten.NewImage(1, 1)
		shade.Fill(shadeColor)
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w), float64(h))
	op.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(shade, op)
}

func (a *App) drawMenu(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	a.drawShade(screen, 0, 0, w, h)
	switch a.menuMode {
	case "rom":
		a.drawRomMenu(screen)
	case "keys":
		a.drawKeysMenu(screen)
	default:
		a.drawMainMenu(screen)
	}
}

func (a *App) drawMainMenu(screen *ebiten.Image) {
	onOff := map[bool]string{true: "On", false: "Off"}
	items := [numItems]string{
		itemResume:  "Resume",
		itemLoad:    "Load program",
		itemPalette: fmt.Sprintf("Palette: %s", a.m.Palette()),
		itemScale:   fmt.Sprintf("Scale: %dx", a.cfg.Scale),
		itemOverlay: fmt.Sprintf("Registers: %s", onOff[a.overlay]),
		itemKeys:    "Keybindings",
		itemQuit:    "Quit",
	}
	ebitenutil.DebugPrintAt(screen, "Menu:", 10, 10)
	maxChars := a.maxCharsForText(10)
	for i, s := range items {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, a.truncateText(prefix+s, maxChars), 10, 10+(i+1)*rowH)
	}
	hint := "Up/Down: select  Left/Right: change  Enter: apply  Esc: close"
	y := 10 + (numItems+1)*rowH
	for _, line := range a.wrapText(hint, maxChars) {
		ebitenutil.DebugPrintAt(screen, line, 10, y)
		y += rowH
	}
}

func (a *App) drawRomMenu(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, a.truncateText("Select program (Enter to load, Esc to return)", a.maxCharsForText(10)), 10, 10)
	ebitenutil.DebugPrintAt(screen, a.truncateText("Dir: "+a.cfg.ROMsDir, a.maxCharsForText(10)), 10, 24)
	if len(a.romList) == 0 {
		ebitenutil.DebugPrintAt(screen, "No programs found", 10, romListY)
		return
	}
	maxRows := a.rowsFrom(romListY)
	end := min(a.romOff+maxRows, len(a.romList))
	maxChars := a.maxCharsForText(10) - 2 // account for "> " prefix
	for i, p := range a.romList[a.romOff:end] {
		rel, err := filepath.Rel(a.cfg.ROMsDir, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		prefix := "  "
		if a.romOff+i == a.romSel {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+a.truncateText(rel, maxChars), 10, romListY+i*rowH)
	}
	// scroll indicators
	if a.romOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, romListY)
	}
	if end < len(a.romList) {
		ebitenutil.DebugPrintAt(screen, "v", 2, romListY+(maxRows-1)*rowH)
	}
}

func (a *App) drawKeysMenu(screen *ebiten.Image) {
	cursorY := 10
	for _, w := range a.wrapText("Keybindings (Up/Down to scroll, Esc to return)", a.maxCharsForText(10)) {
		ebitenutil.DebugPrintAt(screen, w, 10, cursorY)
		cursorY += rowH
	}
	rows := keyRows()
	baseY := cursorY + 4
	maxRows := a.rowsFrom(baseY)
	a.keysOff = max(0, min(a.keysOff, len(rows)-1))
	end := min(a.keysOff+maxRows, len(rows))
	maxChars := a.maxCharsForText(10)
	for i := a.keysOff; i < end; i++ {
		ebitenutil.DebugPrintAt(screen, a.truncateText(rows[i], maxChars), 10, baseY+(i-a.keysOff)*rowH)
	}
	if a.keysOff > 0 {
		ebitenutil.DebugPrintAt(screen, "^", 2, baseY)
	}
	if end < len(rows) {
		ebitenutil.DebugPrintAt(screen, "v", 2, baseY+(maxRows-1)*rowH)
	}
}

// drawOverlay prints the CPU registers in the top left corner.
func (a *App) drawOverlay(screen *ebiten.Image) {
	snap, ok := a.m.Snapshot()
	if !ok {
		return
	}
	face := basicfont.Face7x13
	lines := overlayLines(snap, a.m.Sounding())
	lineH := face.Metrics().Height.Ceil()
	wide := 0
	for _, l := range lines {
		wide = max(wide, text.BoundString(face, l).Dx())
	}
	a.drawShade(screen, 0, 0, wide+2*overlayPx, len(lines)*lineH+2*overlayPx)
	for i, l := range lines {
		text.Draw(screen, l, face, overlayPx, overlayPx+face.Metrics().Ascent.Ceil()+i*lineH, overlayColor)
	}
}

func (a *App) drawToast(screen *ebiten.Image) {
	if a.toastMsg == "" || time.Now().After(a.toastUntil) {
		return
	}
	h := screen.Bounds().Dy()
	msg := a.truncateText(a.toastMsg, a.maxCharsForText(10))
	a.drawShade(screen, 0, h-rowH-8, screen.Bounds().Dx(), rowH+8)
	ebitenutil.DebugPrintAt(screen, msg, 10, h-rowH-6)
}

func (a *App) screenW() int { return ppu.Width * a.cfg.Scale }
func (a *App) screenH() int { return ppu.Height * a.cfg.Scale }

// rowsFrom is how many menu rows fit below y.
func (a *App) rowsFrom(y int) int {
	return max(1, (a.screenH()-y)/rowH)
}

func (a *App) maxCharsForText(margin int) int {
	return max(1, (a.screenW()-2*margin)/charW)
}

func (a *App) truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func (a *App) wrapText(s string, n int) []string {
	var lines []string
	var cur strings.Builder
	for _, w := range strings.Fields(s) {
		if cur.Len() > 0 && cur.Len()+1+len(w) > n {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
