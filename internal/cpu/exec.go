package cpu

import "fmt"

// pcUpdate tells the cycle engine whether to step past the instruction.
type pcUpdate uint8

const (
	advance    pcUpdate = iota // PC += 2 after execution
	redirected                 // instruction set PC itself
)

type handler func(c *CPU, in Instruction) (pcUpdate, error)

var handlers = [numOps]handler{
	OpUnknown: (*CPU).opUnknown,
	OpCLS:     (*CPU).opCLS,
	OpRET:     (*CPU).opRET,
	OpSYS:     (*CPU).opSYS,
	OpJP:      (*CPU).opJP,
	OpCALL:    (*CPU).opCALL,
	OpSEImm:   (*CPU).opSEImm,
	OpSNEImm:  (*CPU).opSNEImm,
	OpSEReg:   (*CPU).opSEReg,
	OpLDImm:   (*CPU).opLDImm,
	OpADDImm:  (*CPU).opADDImm,
	OpLDReg:   (*CPU).opLDReg,
	OpOR:      (*CPU).opOR,
	OpAND:     (*CPU).opAND,
	OpXOR:     (*CPU).opXOR,
	OpADDReg:  (*CPU).opADDReg,
	OpSUB:     (*CPU).opSUB,
	OpSHR:     (*CPU).opSHR,
	OpSUBN:    (*CPU).opSUBN,
	OpSHL:     (*CPU).opSHL,
	OpSNEReg:  (*CPU).opSNEReg,
	OpLDI:     (*CPU).opLDI,
	OpJPV0:    (*CPU).opJPV0,
	OpRND:     (*CPU).opRND,
	OpDRW:     (*CPU).opDRW,
	OpSKP:     (*CPU).opSKP,
	OpSKNP:    (*CPU).opSKNP,
	OpLDVxDT:  (*CPU).opLDVxDT,
	OpLDVxK:   (*CPU).opLDVxK,
	OpLDDTVx:  (*CPU).opLDDTVx,
	OpLDSTVx:  (*CPU).opLDSTVx,
	OpADDI:    (*CPU).opADDI,
	OpLDF:     (*CPU).opLDF,
	OpLDB:     (*CPU).opLDB,
	OpStore:   (*CPU).opStore,
	OpLoad:    (*CPU).opLoad,
}

func (c *CPU) execute(in Instruction) (pcUpdate, error) {
	return handlers[in.Op](c, in)
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) memFault(in Instruction, err error) error {
	return &MemoryError{PC: c.pc, Word: in.Word, Err: err}
}

func (c *CPU) skipIf(cond bool) (pcUpdate, error) {
	if cond {
		c.pc += 2
	}
	return advance, nil
}

func (c *CPU) opUnknown(in Instruction) (pcUpdate, error) {
	c.log.Printf("cpu: unknown instruction %04X at %#04x, ignored", in.Word, c.pc)
	return advance, nil
}

func (c *CPU) opCLS(Instruction) (pcUpdate, error) {
	c.fb = Framebuffer{}
	return advance, nil
}

// opRET resumes after the CALL recorded on the stack: the stack holds the
// CALL's own address, so PC becomes that address plus 2. Restoring the bare
// pushed address would run the CALL again forever. An empty stack is logged
// and PC is left where it is.
func (c *CPU) opRET(in Instruction) (pcUpdate, error) {
	if c.sp == 0 {
		c.log.Printf("cpu: %04X at %#04x: return with empty call stack", in.Word, c.pc)
		return redirected, nil
	}
	c.sp--
	c.pc = c.stack[c.sp] + 2
	return redirected, nil
}

func (c *CPU) opSYS(in Instruction) (pcUpdate, error) {
	c.log.Printf("cpu: SYS $%03X at %#04x ignored", in.NNN, c.pc)
	return advance, nil
}

// opJP and opJPV0 accept odd targets; execution continues from there with
// unaligned words.
func (c *CPU) opJP(in Instruction) (pcUpdate, error) {
	c.pc = in.NNN
	return redirected, nil
}

// opCALL pushes the address of the CALL itself.
func (c *CPU) opCALL(in Instruction) (pcUpdate, error) {
	if int(c.sp) >= StackDepth {
		return advance, fmt.Errorf("%w: CALL $%03X at %#04x with %d frames", ErrStackOverflow, in.NNN, c.pc, c.sp)
	}
	c.stack[c.sp] = c.pc
	c.sp++
	c.pc = in.NNN
	return redirected, nil
}

func (c *CPU) opSEImm(in Instruction) (pcUpdate, error)  { return c.skipIf(c.v[in.X] == in.NN) }
func (c *CPU) opSNEImm(in Instruction) (pcUpdate, error) { return c.skipIf(c.v[in.X] != in.NN) }
func (c *CPU) opSEReg(in Instruction) (pcUpdate, error)  { return c.skipIf(c.v[in.X] == c.v[in.Y]) }
func (c *CPU) opSNEReg(in Instruction) (pcUpdate, error) { return c.skipIf(c.v[in.X] != c.v[in.Y]) }

func (c *CPU) opLDImm(in Instruction) (pcUpdate, error) {
	c.v[in.X] = in.NN
	return advance, nil
}

// opADDImm wraps and leaves VF alone.
func (c *CPU) opADDImm(in Instruction) (pcUpdate, error) {
	c.v[in.X] += in.NN
	return advance, nil
}

func (c *CPU) opLDReg(in Instruction) (pcUpdate, error) {
	c.v[in.X] = c.v[in.Y]
	return advance, nil
}

func (c *CPU) opOR(in Instruction) (pcUpdate, error) {
	c.v[in.X] |= c.v[in.Y]
	return advance, nil
}

func (c *CPU) opAND(in Instruction) (pcUpdate, error) {
	c.v[in.X] &= c.v[in.Y]
	return advance, nil
}

func (c *CPU) opXOR(in Instruction) (pcUpdate, error) {
	c.v[in.X] ^= c.v[in.Y]
	return advance, nil
}

// The flag-setting ALU ops write VF last, so VF as a destination ends up
// holding the flag.

func (c *CPU) opADDReg(in Instruction) (pcUpdate, error) {
	sum := uint16(c.v[in.X]) + uint16(c.v[in.Y])
	c.v[in.X] = byte(sum)
	c.v[flagReg] = b2u(sum > 0xFF)
	return advance, nil
}

func (c *CPU) opSUB(in Instruction) (pcUpdate, error) {
	x, y := c.v[in.X], c.v[in.Y]
	c.v[in.X] = x - y
	c.v[flagReg] = b2u(x >= y)
	return advance, nil
}

func (c *CPU) opSUBN(in Instruction) (pcUpdate, error) {
	x, y := c.v[in.X], c.v[in.Y]
	c.v[in.X] = y - x
	c.v[flagReg] = b2u(y >= x)
	return advance, nil
}

func (c *CPU) opSHR(in Instruction) (pcUpdate, error) {
	x := c.v[in.X]
	c.v[in.X] = x >> 1
	c.v[flagReg] = x & 0x01
	return advance, nil
}

func (c *CPU) opSHL(in Instruction) (pcUpdate, error) {
	x := c.v[in.X]
	c.v[in.X] = x << 1
	c.v[flagReg] = x >> 7
	return advance, nil
}

func (c *CPU) opLDI(in Instruction) (pcUpdate, error) {
	c.i = in.NNN
	return advance, nil
}

func (c *CPU) opJPV0(in Instruction) (pcUpdate, error) {
	c.pc = in.NNN + uint16(c.v[0])
	return redirected, nil
}

func (c *CPU) opRND(in Instruction) (pcUpdate, error) {
	c.v[in.X] = c.rnd() & in.NN
	return advance, nil
}

// opDRW XORs an N-row sprite from memory[I] onto the framebuffer. The
// origin wraps around the screen, x mod 64 and y mod 32 (not mod 64, which
// would leave rows 32..63 off screen); the sprite body is clipped at the
// edges.
func (c *CPU) opDRW(in Instruction) (pcUpdate, error) {
	sprite, err := c.mem.ReadBlock(c.i, int(in.N))
	if err != nil {
		return advance, c.memFault(in, err)
	}
	x0 := int(c.v[in.X]) % Width
	y0 := int(c.v[in.Y]) % Height

	collision := false
	for row, bits := range sprite {
		y := y0 + row
		if y >= Height {
			break
		}
		for col := 0; col < 8; col++ {
			x := x0 + col
			if x >= Width {
				break
			}
			if bits&(0x80>>col) == 0 {
				continue
			}
			if c.fb[y][x] {
				collision = true
			}
			c.fb[y][x] = !c.fb[y][x]
		}
	}
	c.v[flagReg] = b2u(collision)
	return advance, nil
}

func (c *CPU) opSKP(in Instruction) (pcUpdate, error)  { return c.skipIf(c.keys.Pressed(c.v[in.X])) }
func (c *CPU) opSKNP(in Instruction) (pcUpdate, error) { return c.skipIf(!c.keys.Pressed(c.v[in.X])) }

func (c *CPU) opLDVxDT(in Instruction) (pcUpdate, error) {
	c.v[in.X] = c.timers.Delay
	return advance, nil
}

// opLDVxK latches the wait; the key is stored by a later Cycle call.
func (c *CPU) opLDVxK(in Instruction) (pcUpdate, error) {
	c.latch.set(in.X)
	return advance, nil
}

func (c *CPU) opLDDTVx(in Instruction) (pcUpdate, error) {
	c.timers.Delay = c.v[in.X]
	return advance, nil
}

func (c *CPU) opLDSTVx(in Instruction) (pcUpdate, error) {
	c.timers.Sound = c.v[in.X]
	return advance, nil
}

func (c *CPU) opADDI(in Instruction) (pcUpdate, error) {
	c.i += uint16(c.v[in.X])
	return advance, nil
}

func (c *CPU) opLDF(in Instruction) (pcUpdate, error) {
	c.i = FontBase + uint16(c.v[in.X]&0xF)*FontStride
	return advance, nil
}

func (c *CPU) opLDB(in Instruction) (pcUpdate, error) {
	v := c.v[in.X]
	if err := c.mem.WriteBlock(int(c.i), []byte{v / 100, v / 10 % 10, v % 10}); err != nil {
		return advance, c.memFault(in, err)
	}
	return advance, nil
}

// opStore writes V0..Vx inclusive to memory[I:]. I is left unchanged.
func (c *CPU) opStore(in Instruction) (pcUpdate, error) {
	if err := c.mem.WriteBlock(int(c.i), c.v[:int(in.X)+1]); err != nil {
		return advance, c.memFault(in, err)
	}
	return advance, nil
}

// opLoad reads V0..Vx inclusive from memory[I:]. I is left unchanged.
func (c *CPU) opLoad(in Instruction) (pcUpdate, error) {
	data, err := c.mem.ReadBlock(c.i, int(in.X)+1)
	if err != nil {
		return advance, c.memFault(in, err)
	}
	copy(c.v[:], data)
	return advance, nil
}
