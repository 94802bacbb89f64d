package bus

import "fmt"

// Size is the full CHIP-8 address space.
const Size = 0x1000

// Bus is the flat 4 KiB memory of the machine. Every access is checked
// against Size; nothing is mirrored or mapped.
type Bus struct {
	ram [Size]byte
}

func New() *Bus {
	return &Bus{}
}

// AccessError reports an access that would leave the address space.
type AccessError struct {
	Op   string // "read" or "write"
	Addr int
	Len  int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("bus: %s of %d byte(s) at %#04x outside %#04x", e.Op, e.Len, e.Addr, Size)
}

func check(op string, addr, n int) error {
	if addr < 0 || n < 0 || addr+n > Size {
		return &AccessError{Op: op, Addr: addr, Len: n}
	}
	return nil
}

func (b *Bus) Read(addr uint16) (byte, error) {
	if err := check("read", int(addr), 1); err != nil {
		return 0, err
	}
	return b.ram[addr], nil
}

func (b *Bus) Write(addr uint16, value byte) error {
	if err := check("write", int(addr), 1); err != nil {
		return err
	}
	b.ram[addr] = value
	return nil
}

// Read16 returns the big-endian word at addr.
func (b *Bus) Read16(addr uint16) (uint16, error) {
	if err := check("read", int(addr), 2); err != nil {
		return 0, err
	}
	return uint16(b.ram[addr])<<8 | uint16(b.ram[addr+1]), nil
}

// ReadBlock copies n bytes starting at addr into a new slice.
func (b *Bus) ReadBlock(addr uint16, n int) ([]byte, error) {
	if err := check("read", int(addr), n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b.ram[int(addr):int(addr)+n])
	return out, nil
}

// WriteBlock copies data into memory starting at addr. Nothing is written
// if the block does not fit.
func (b *Bus) WriteBlock(addr int, data []byte) error {
	if err := check("write", addr, len(data)); err != nil {
		return err
	}
	copy(b.ram[addr:], data)
	return nil
}

// Reset zeroes all of memory.
func (b *Bus) Reset() { b.ram = [Size]byte{} }
