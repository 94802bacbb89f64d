package ui

import (
	"errors"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/input"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
)

type App struct {
	cfg    Config
	m      *emu.Machine
	layout input.Layout
	tex    *ebiten.Image
	paused bool
	halted bool // a fatal error was reported; wait for reset

	overlay bool

	// menu
	showMenu bool
	menuMode string // "main", "rom", "keys"
	menuIdx  int
	romList  []string
	romSel   int
	romOff   int
	keysOff  int

	toastMsg   string
	toastUntil time.Time
	quit       bool
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	a := &App{cfg: cfg, m: m, layout: input.DefaultLayout, overlay: cfg.ShowOverlay, menuMode: "main"}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	a.applyWindowSize()
	a.updateTitle()
	return a
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if a.quit {
		return ebiten.Termination
	}

	// Toggle menu (Escape)
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && (!a.showMenu || a.menuMode == "main") {
		a.showMenu = !a.showMenu
		a.menuMode = "main"
		a.menuIdx = 0
		return nil
	}
	if a.showMenu {
		switch a.menuMode {
		case "rom":
			a.updateRomMenu()
		case "keys":
			a.updateKeysMenu()
		default:
			a.updateMainMenu()
		}
		return nil
	}

	// Pause toggle (P)
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	// Register overlay (Tab)
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.overlay = !a.overlay
	}
	// Reset (F5)
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.reset()
	}
	// Screenshot (F12)
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if name, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + name)
		}
	}

	a.m.SetKeys(pollKeypad(a.layout))

	// Frame-step when paused (N)
	if a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN) {
		a.step()
	}
	if !a.paused {
		a.step()
	}
	return nil
}

func (a *App) step() {
	if a.halted {
		return
	}
	if err := a.m.StepFrame(); err != nil {
		a.halted = true
		log.Printf("ui: emulation stopped: %v", err)
		a.toast("Halted: " + err.Error() + " (F5 resets)")
	}
}

func (a *App) reset() {
	if err := a.m.Reset(); err != nil {
		a.toast("Reset failed: " + err.Error())
		return
	}
	a.halted = false
	a.toast("Reset")
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.Width, ppu.Height)
	}
	a.tex.WritePixels(a.m.Framebuffer())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.cfg.Scale), float64(a.cfg.Scale))
	screen.DrawImage(a.tex, op)

	if a.overlay && !a.showMenu {
		a.drawOverlay(screen)
	}
	if a.showMenu {
		a.drawMenu(screen)
	}
	a.drawToast(screen)
}

func (a *App) Layout(outW, outH int) (int, int) {
	return ppu.Width * a.cfg.Scale, ppu.Height * a.cfg.Scale
}

func (a *App) applyWindowSize() {
	ebiten.SetWindowSize(ppu.Width*a.cfg.Scale, ppu.Height*a.cfg.Scale)
}

func (a *App) updateTitle() {
	title := a.cfg.Title
	if n := a.m.ROMName(); n != "" {
		title = a.cfg.Title + " - [" + n + "]"
	}
	ebiten.SetWindowTitle(title)
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

func (a *App) loadROM(path string) {
	if err := a.m.LoadROMFromFile(path); err != nil {
		a.toast("Load failed: " + err.Error())
		return
	}
	a.halted = false
	a.updateTitle()
	a.toast("Loaded " + filepath.Base(path))
}

func (a *App) saveScreenshot() (string, error) {
	if !a.m.Loaded() {
		return "", errors.New("nothing to capture")
	}
	img := a.m.Picture(a.cfg.Scale)
	ts := time.Now().Format("20060102_150405")
	name := filepath.Join(a.cfg.Screenshots, fmt.Sprintf("screenshot_%s.png", ts))
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, img)
}

// overlayLines renders a snapshot as the lines drawn by the register overlay.
func overlayLines(s cpu.Snapshot, sounding bool) []string {
	lines := make([]string, 0, 8)
	for row := 0; row < cpu.NumRegisters; row += 4 {
		lines = append(lines, fmt.Sprintf("V%X=%02X V%X=%02X V%X=%02X V%X=%02X",
			row, s.V[row], row+1, s.V[row+1], row+2, s.V[row+2], row+3, s.V[row+3]))
	}
	lines = append(lines,
		fmt.Sprintf("PC=%04X I=%04X SP=%d", s.PC, s.I, s.SP),
		fmt.Sprintf("DT=%02X ST=%02X %s", s.Delay, s.Sound, s.State),
	)
	if sounding {
		lines[len(lines)-1] += " BEEP"
	}
	return lines
}
