package emu

import (
	"bytes"
	"fmt"
	"image"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
)

// Machine ties a CPU to its program image, keypad state and display.
type Machine struct {
	cfg    Config
	cpu    *cpu.CPU
	ppu    *ppu.PPU
	img    *cart.Image
	keys   cpu.Keypad
	screen cpu.Framebuffer
	err    error
	frames uint64
}

func New(cfg Config) *Machine {
	cfg.Defaults()
	pal, ok := ppu.PaletteByName(cfg.Palette)
	if !ok {
		cfg.Logger.Printf("emu: unknown palette %q, using %s", cfg.Palette, ppu.DefaultPalette)
		pal, _ = ppu.PaletteByName(ppu.DefaultPalette)
		cfg.Palette = pal.Name
	}
	m := &Machine{cfg: cfg, ppu: ppu.New(pal)}
	m.ppu.Render(&m.screen)
	return m
}

// LoadImage replaces the running program with img on a fresh CPU.
func (m *Machine) LoadImage(img *cart.Image) error {
	opts := []cpu.Option{cpu.WithLogger(m.cfg.Logger), cpu.WithDebug(m.cfg.Debug)}
	if m.cfg.Random != nil {
		opts = append(opts, cpu.WithRandom(m.cfg.Random))
	}
	c := cpu.New(opts...)
	if err := c.Load(img.Data[:], img.Size, cpu.ProgramStart); err != nil {
		return fmt.Errorf("emu: load %q: %w", img.Name, err)
	}
	m.cpu = c
	m.img = img
	m.err = nil
	m.frames = 0
	m.screen = c.Framebuffer()
	m.ppu.Render(&m.screen)
	return nil
}

// LoadProgram loads raw program bytes.
func (m *Machine) LoadProgram(program []byte) error {
	img, err := cart.Read(bytes.NewReader(program))
	if err != nil {
		return err
	}
	return m.LoadImage(img)
}

// LoadROMFromFile loads the program file at path.
func (m *Machine) LoadROMFromFile(path string) error {
	img, err := cart.Load(path)
	if err != nil {
		return err
	}
	return m.LoadImage(img)
}

// Reset restarts the current program from a clean CPU.
func (m *Machine) Reset() error {
	if m.img == nil {
		return nil
	}
	return m.LoadImage(m.img)
}

func (m *Machine) Loaded() bool { return m.cpu != nil }

// ROMName is the name of the loaded image, empty if none.
func (m *Machine) ROMName() string {
	if m.img == nil {
		return ""
	}
	return m.img.Name
}

// Image returns the loaded program image.
func (m *Machine) Image() *cart.Image { return m.img }

// SetKeys records the keypad state used by the following cycles.
func (m *Machine) SetKeys(k cpu.Keypad) { m.keys = k }

// StepFrame runs one frame worth of cycles and refreshes the RGBA buffer.
// In single-step debug mode a frame is a single cycle. Once the CPU has
// halted every call returns the fatal error.
func (m *Machine) StepFrame() error {
	if m.cpu == nil {
		return nil
	}
	if m.err != nil {
		return m.err
	}
	n := m.cfg.CyclesPerFrame
	if m.cfg.Debug >= cpu.DebugStep {
		n = 1
	}
	for i := 0; i < n; i++ {
		fb, err := m.cpu.Cycle(m.keys)
		m.screen = fb
		if err != nil {
			m.err = err
			break
		}
	}
	m.ppu.Render(&m.screen)
	m.frames++
	return m.err
}

// Err returns the fatal error that stopped the CPU, if any.
func (m *Machine) Err() error { return m.err }

// Frames counts StepFrame calls since the last load.
func (m *Machine) Frames() uint64 { return m.frames }

// Framebuffer returns RGBA pixels (64x32x4) of the last frame.
func (m *Machine) Framebuffer() []byte { return m.ppu.Pixels() }

// Screen returns the last monochrome framebuffer.
func (m *Machine) Screen() cpu.Framebuffer { return m.screen }

// Snapshot returns CPU state for debug overlays; ok is false with no program.
func (m *Machine) Snapshot() (cpu.Snapshot, bool) {
	if m.cpu == nil {
		return cpu.Snapshot{}, false
	}
	return m.cpu.Snapshot(), true
}

// Sounding reports whether the sound timer is running.
func (m *Machine) Sounding() bool {
	return m.cpu != nil && m.cpu.SoundTimer() > 0
}

// SetPalette switches display colors by name.
func (m *Machine) SetPalette(name string) error {
	pal, ok := ppu.PaletteByName(name)
	if !ok {
		return fmt.Errorf("emu: unknown palette %q (have %v)", name, ppu.PaletteNames())
	}
	m.cfg.Palette = pal.Name
	m.ppu.SetPalette(pal)
	m.ppu.Render(&m.screen)
	return nil
}

// Palette is the active palette name.
func (m *Machine) Palette() string { return m.cfg.Palette }

// Picture returns the current frame as an image scaled by an integer factor.
func (m *Machine) Picture(scale int) *image.RGBA { return m.ppu.Image(scale) }
