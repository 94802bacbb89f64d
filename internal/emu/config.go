package emu

import (
	"log"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
)

// Config contains settings that affect emulation behavior.
type Config struct {
	Debug          cpu.DebugLevel // see cpu.DebugLevel
	CyclesPerFrame int            // instructions (and timer ticks) per StepFrame
	Palette        string         // ppu palette name
	Logger         *log.Logger    // nil means log.Default()
	Random         func() byte    // nil means the CPU's own source; tests pin it
}

// DefaultCyclesPerFrame gives roughly 600 instructions per second at 60 frames.
const DefaultCyclesPerFrame = 10

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.CyclesPerFrame <= 0 {
		c.CyclesPerFrame = DefaultCyclesPerFrame
	}
	if c.Palette == "" {
		c.Palette = ppu.DefaultPalette
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
}
