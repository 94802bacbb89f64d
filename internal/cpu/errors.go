package cpu

import (
	"errors"
	"fmt"
)

var (
	// Setup errors returned by Load.
	ErrProgramTooLarge = errors.New("cpu: program too large")
	ErrBadLoadOffset   = errors.New("cpu: bad load offset")
	ErrShortProgram    = errors.New("cpu: program buffer shorter than size")

	// Fatal runtime errors; the CPU halts once one is returned.
	ErrStackOverflow = errors.New("cpu: call stack overflow")
	ErrMemoryBounds  = errors.New("cpu: memory access out of bounds")
)

// MemoryError is a fatal access outside memory caused by an instruction
// (or by fetching one). It matches ErrMemoryBounds.
type MemoryError struct {
	PC   uint16
	Word uint16 // instruction word, zero when the fetch itself failed
	Err  error  // underlying bus error
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("cpu: pc=%#04x op=%04X: %v", e.PC, e.Word, e.Err)
}

func (e *MemoryError) Is(target error) bool { return target == ErrMemoryBounds }

func (e *MemoryError) Unwrap() error { return e.Err }
