package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/Chip8Emulator/internal/translate"
)

type traceEntry struct {
	pc uint16
	in cpu.Instruction
	v  [cpu.NumRegisters]byte
	i  uint16
	sp uint8
	dt byte
	st byte
}

func (te traceEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PC=%04X OP=%04X %-18s", te.pc, te.in.Word, te.in)
	for r, v := range te.v {
		fmt.Fprintf(&sb, " V%X=%02X", r, v)
	}
	fmt.Fprintf(&sb, " I=%04X SP=%d DT=%02X ST=%02X", te.i, te.sp, te.dt, te.st)
	return sb.String()
}

// parseKeys reads held keypad lines from a string of hex digits, e.g. "5a".
func parseKeys(s string) (cpu.Keypad, error) {
	var keys cpu.Keypad
	for _, r := range s {
		k, err := strconv.ParseUint(string(r), 16, 8)
		if err != nil {
			return keys, fmt.Errorf("bad key %q", r)
		}
		keys[k] = true
	}
	return keys, nil
}

// printListing writes the disassembly, or a raw hex dump of eight words per
// row when raw is set.
func printListing(w io.Writer, img *cart.Image, start uint16, raw bool) {
	lines := cpu.Disassemble(img.Bytes(), start)
	if !raw {
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		return
	}
	for row := 0; row < len(lines); row += 8 {
		fmt.Fprintf(w, "%04X:", lines[row].Addr)
		for _, l := range lines[row:min(row+8, len(lines))] {
			fmt.Fprintf(w, " %04X", l.Word)
		}
		fmt.Fprintln(w)
	}
}

func main() {
	romPath := flag.String("rom", "", "path to program (.ch8)")
	steps := flag.Int("steps", 1_000_000, "max CPU cycles to run")
	startPC := flag.Int("start", cpu.ProgramStart, "load address and initial PC")
	trace := flag.Bool("trace", false, "print PC/opcodes and registers")
	list := flag.Bool("list", false, "print a disassembly listing and exit")
	hexDump := flag.Bool("hex", false, "with -list: print raw words, eight per row")
	keysFlag := flag.String("keys", "", "keypad lines held for the whole run, as hex digits (e.g. 5a)")
	screen := flag.Bool("screen", false, "print the framebuffer when done")
	timeout := flag.Duration("timeout", 0, "optional wall-clock timeout (e.g. 30s, 2m); 0 disables")
	traceOnFail := flag.Bool("traceOnFail", false, "on a fatal error, print a recent trace window (slows down)")
	traceWindow := flag.Int("traceWindow", 200, "number of recent instructions to include in 'traceOnFail' dump")
	flag.Parse()

	if *romPath == "" {
		log.Fatal("-rom is required")
	}
	img, err := cart.Load(*romPath)
	if err != nil {
		log.Fatalf("read rom: %v", err)
	}
	if *list {
		printListing(os.Stdout, img, uint16(*startPC), *hexDump)
		return
	}
	keys, err := parseKeys(*keysFlag)
	if err != nil {
		log.Fatalf("-keys: %v", err)
	}

	c := cpu.New()
	if err := c.Load(img.Data[:], img.Size, *startPC); err != nil {
		log.Fatalf("load: %v", err)
	}

	start := time.Now()
	var deadline time.Time
	if *timeout > 0 {
		deadline = start.Add(*timeout)
	}
	done := func(n int) {
		fmt.Println()
		_ = translate.Fprintln(os.Stdout, "Done: steps=%d instructions=%d elapsed=%s", n, c.Cycles(), time.Since(start).Truncate(time.Millisecond))
		if *screen {
			fb := c.Framebuffer()
			fmt.Print(fb.Text())
		}
	}

	// ring buffer for recent traces
	window := max(*traceWindow, 1)
	ring := make([]traceEntry, window)
	ringIdx := 0
	ringFill := 0
	for i := 0; i < *steps; i++ {
		if *trace || *traceOnFail {
			word, _ := c.Peek(c.PC())
			lo, _ := c.Peek(c.PC() + 1)
			te := traceEntry{
				pc: c.PC(), in: cpu.Decode(uint16(word)<<8 | uint16(lo)),
				v: c.Registers(), i: c.Index(), sp: c.SP(),
				dt: c.DelayTimer(), st: c.SoundTimer(),
			}
			if *trace && c.State() == cpu.Running {
				fmt.Println(te)
			}
			if *traceOnFail {
				ring[ringIdx] = te
				ringIdx = (ringIdx + 1) % window
				if ringFill < window {
					ringFill++
				}
			}
		}

		if _, err := c.Cycle(keys); err != nil {
			fmt.Printf("\nFatal: %v\n", err)
			var me *cpu.MemoryError
			if errors.As(err, &me) {
				fmt.Printf("faulting instruction %04X at %04X\n", me.Word, me.PC)
			}
			if *traceOnFail && ringFill > 0 {
				fmt.Printf("\n--- recent trace (last %d instructions) ---\n", ringFill)
				// print in chronological order
				startIdx := (ringIdx - ringFill + window) % window
				for j := 0; j < ringFill; j++ {
					fmt.Println(ring[(startIdx+j)%window])
				}
				fmt.Printf("--- end trace ---\n")
			}
			_ = c.DumpState(os.Stdout)
			done(i + 1)
			os.Exit(1)
		}
		if c.State() == cpu.WaitingForKey && !keys.Any() {
			fmt.Printf("\nWaiting for a key at PC=%04X; pass -keys to continue.\n", c.PC())
			done(i + 1)
			return
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Printf("\nTimeout after %s.\n", time.Since(start).Truncate(time.Millisecond))
			done(i + 1)
			os.Exit(2)
		}
	}
	done(*steps)
}
