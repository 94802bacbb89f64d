package ui

// Config contains window and input related settings.
type Config struct {
	Title       string // window title
	Scale       int    // integer upscaling factor
	ROMsDir     string // directory to browse for programs
	ShowOverlay bool   // start with the register overlay visible
	Screenshots string // directory screenshots are written to
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "chip8emu"
	}
	if c.Scale <= 0 {
		c.Scale = 10
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.Screenshots == "" {
		c.Screenshots = "."
	}
}
