package main

import (
	"context"
	"flag"
	"fmt"
	"hash/crc32"
	"image/png"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/input"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ppu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/term"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/translate"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/ui"
)

type CLIFlags struct {
	ROMPath string
	Scale   int
	Title   string
	Debug   int
	CPF     int
	Palette string
	ROMsDir string

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")

	// terminal
	Term bool
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to program (.ch8)")
	flag.IntVar(&f.Scale, "scale", 10, "window scale")
	flag.StringVar(&f.Title, "title", "chip8emu", "window title")
	flag.IntVar(&f.Debug, "debug", 0, "debug level: 0 off, 1 trace, 2 state dumps, 3 single-step")
	flag.IntVar(&f.CPF, "cpf", emu.DefaultCyclesPerFrame, "instructions per 60 Hz frame")
	flag.StringVar(&f.Palette, "palette", ppu.DefaultPalette, "display colors: "+strings.Join(ppu.PaletteNames(), ", "))
	flag.StringVar(&f.ROMsDir, "roms", "roms", "directory the menu browses for programs")

	// headless options
	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")

	flag.BoolVar(&f.Term, "term", false, "run in the terminal instead of a window")
	flag.Parse()
	return f
}

func runHeadless(m *emu.Machine, frames, scale int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	var runErr error
	ran := 0
	for ran < frames {
		ran++
		if runErr = m.StepFrame(); runErr != nil {
			break
		}
	}
	dur := time.Since(start)

	fb := m.Framebuffer() // RGBA 64x32*4
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(ran) / dur.Seconds()

	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		ran, dur.Truncate(time.Millisecond), fps, crc)
	if snap, ok := m.Snapshot(); ok {
		log.Print(translate.From("headless: %d instructions, PC=%04X, state %s", snap.Cycles, snap.PC, snap.State))
	}

	if pngPath != "" {
		if err := saveFramePNG(m, scale, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}
	if runErr != nil {
		return fmt.Errorf("frame %d: %w", ran, runErr)
	}

	if expectCRC != "" {
		// normalize expected hex (allow with/without 0x, upper/lowercase)
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func saveFramePNG(m *emu.Machine, scale int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, m.Picture(scale))
}

func runTerm(m *emu.Machine) error {
	if !term.Fits(int(os.Stdout.Fd())) {
		log.Printf("terminal smaller than %dx%d, output will wrap", cpu.Width, term.Rows)
	}
	keys := term.NewKeys(input.DefaultLayout, term.DefaultHold)
	host := term.NewHost(keys)
	if err := host.Start(); err != nil {
		return err
	}
	defer host.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := term.NewRenderer(os.Stdout)
	err := term.Loop(ctx, m, keys, r, 60)
	_ = r.Close()
	return err
}

func main() {
	f := parseFlags()

	level, err := cpu.ParseDebugLevel(f.Debug)
	if err != nil {
		log.Fatal(err)
	}
	m := emu.New(emu.Config{
		Debug:          level,
		CyclesPerFrame: f.CPF,
		Palette:        f.Palette,
	})

	if f.ROMPath != "" {
		if err := m.LoadROMFromFile(f.ROMPath); err != nil {
			log.Fatalf("load program: %v", err)
		}
		log.Printf("program: %s", cart.Describe(m.Image()))
	}

	if f.Headless || f.Term {
		if !m.Loaded() {
			log.Fatal("-rom is required without a window")
		}
	}

	if f.Headless {
		if err := runHeadless(m, f.Frames, f.Scale, f.PNGOut, f.Expect); err != nil {
			log.Fatal(err)
		}
		return
	}
	if f.Term {
		if err := runTerm(m); err != nil {
			log.Fatal(err)
		}
		return
	}

	uiCfg := ui.Config{Title: f.Title, Scale: f.Scale, ROMsDir: f.ROMsDir, ShowOverlay: level > cpu.DebugOff}
	app := ui.NewApp(uiCfg, m)
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
