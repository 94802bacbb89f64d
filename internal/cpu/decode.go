package cpu

import "fmt"

// Op identifies a decoded instruction.
type Op uint8

const (
	OpUnknown Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpSYS        // 0nnn
	OpJP         // 1nnn
	OpCALL       // 2nnn
	OpSEImm      // 3xnn
	OpSNEImm     // 4xnn
	OpSEReg      // 5xy0
	OpLDImm      // 6xnn
	OpADDImm     // 7xnn
	OpLDReg      // 8xy0
	OpOR         // 8xy1
	OpAND        // 8xy2
	OpXOR        // 8xy3
	OpADDReg     // 8xy4
	OpSUB        // 8xy5
	OpSHR        // 8xy6
	OpSUBN       // 8xy7
	OpSHL        // 8xyE
	OpSNEReg     // 9xy0
	OpLDI        // Annn
	OpJPV0       // Bnnn
	OpRND        // Cxnn
	OpDRW        // Dxyn
	OpSKP        // Ex9E
	OpSKNP       // ExA1
	OpLDVxDT     // Fx07
	OpLDVxK      // Fx0A
	OpLDDTVx     // Fx15
	OpLDSTVx     // Fx18
	OpADDI       // Fx1E
	OpLDF        // Fx29
	OpLDB        // Fx33
	OpStore      // Fx55
	OpLoad       // Fx65

	numOps
)

var opNames = [numOps]string{
	OpUnknown: "DW",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpSYS:     "SYS",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEImm:   "SE",
	OpSNEImm:  "SNE",
	OpSEReg:   "SE",
	OpLDImm:   "LD",
	OpADDImm:  "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpStore:   "LD",
	OpLoad:    "LD",
}

// Mnemonic returns the assembler mnemonic of op.
func (op Op) Mnemonic() string {
	if op >= numOps {
		return opNames[OpUnknown]
	}
	return opNames[op]
}

// Instruction is a decoded 16-bit instruction word with all operand
// fields extracted once.
type Instruction struct {
	Word uint16
	Op   Op

	X   uint8  // bits 8-11
	Y   uint8  // bits 4-7
	N   uint8  // bits 0-3
	NN  byte   // bits 0-7
	NNN uint16 // bits 0-11
}

// Decode splits word into its nibble fields and classifies it.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0xF,
		Y:    uint8(word>>4) & 0xF,
		N:    uint8(word) & 0xF,
		NN:   byte(word),
		NNN:  word & 0x0FFF,
	}
	in.Op = classify(in)
	return in
}

func classify(in Instruction) Op {
	switch in.Word >> 12 {
	case 0x0:
		switch in.Word {
		case 0x00E0:
			return OpCLS
		case 0x00EE:
			return OpRET
		}
		return OpSYS
	case 0x1:
		return OpJP
	case 0x2:
		return OpCALL
	case 0x3:
		return OpSEImm
	case 0x4:
		return OpSNEImm
	case 0x5:
		if in.N == 0 {
			return OpSEReg
		}
	case 0x6:
		return OpLDImm
	case 0x7:
		return OpADDImm
	case 0x8:
		switch in.N {
		case 0x0:
			return OpLDReg
		case 0x1:
			return OpOR
		case 0x2:
			return OpAND
		case 0x3:
			return OpXOR
		case 0x4:
			return OpADDReg
		case 0x5:
			return OpSUB
		case 0x6:
			return OpSHR
		case 0x7:
			return OpSUBN
		case 0xE:
			return OpSHL
		}
	case 0x9:
		if in.N == 0 {
			return OpSNEReg
		}
	case 0xA:
		return OpLDI
	case 0xB:
		return OpJPV0
	case 0xC:
		return OpRND
	case 0xD:
		return OpDRW
	case 0xE:
		switch in.NN {
		case 0x9E:
			return OpSKP
		case 0xA1:
			return OpSKNP
		}
	case 0xF:
		switch in.NN {
		case 0x07:
			return OpLDVxDT
		case 0x0A:
			return OpLDVxK
		case 0x15:
			return OpLDDTVx
		case 0x18:
			return OpLDSTVx
		case 0x1E:
			return OpADDI
		case 0x29:
			return OpLDF
		case 0x33:
			return OpLDB
		case 0x55:
			return OpStore
		case 0x65:
			return OpLoad
		}
	}
	return OpUnknown
}

// String renders the instruction in the usual CHIP-8 assembler syntax,
// e.g. "LD VA, $02" or "DRW V0, V1, $5".
func (in Instruction) String() string {
	name := in.Op.Mnemonic()
	var args string
	switch in.Op {
	case OpCLS, OpRET:
		return name
	case OpUnknown:
		args = fmt.Sprintf("$%04X", in.Word)
	case OpSYS, OpJP, OpCALL:
		args = fmt.Sprintf("$%03X", in.NNN)
	case OpSEImm, OpSNEImm, OpLDImm, OpADDImm, OpRND:
		args = fmt.Sprintf("V%X, $%02X", in.X, in.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSUBN:
		args = fmt.Sprintf("V%X, V%X", in.X, in.Y)
	case OpSHR, OpSHL, OpSKP, OpSKNP:
		args = fmt.Sprintf("V%X", in.X)
	case OpLDI:
		args = fmt.Sprintf("I, $%03X", in.NNN)
	case OpJPV0:
		args = fmt.Sprintf("V0, $%03X", in.NNN)
	case OpDRW:
		args = fmt.Sprintf("V%X, V%X, $%X", in.X, in.Y, in.N)
	case OpLDVxDT:
		args = fmt.Sprintf("V%X, DT", in.X)
	case OpLDVxK:
		args = fmt.Sprintf("V%X, K", in.X)
	case OpLDDTVx:
		args = fmt.Sprintf("DT, V%X", in.X)
	case OpLDSTVx:
		args = fmt.Sprintf("ST, V%X", in.X)
	case OpADDI:
		args = fmt.Sprintf("I, V%X", in.X)
	case OpLDF:
		args = fmt.Sprintf("F, V%X", in.X)
	case OpLDB:
		args = fmt.Sprintf("B, V%X", in.X)
	case OpStore:
		args = fmt.Sprintf("[I], V%X", in.X)
	case OpLoad:
		args = fmt.Sprintf("V%X, [I]", in.X)
	}
	return name + " " + args
}
