/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package rv_as

// Inclusive immediate ranges per format.
const (
	imm12Min  = -2048
	imm12Max  = 2047
	branchMin = -4096
	branchMax = 4095
	jumpMin   = -1 << 20
	jumpMax   = 1<<20 - 1
)

// Encode packs one instruction into a 32-bit word. pc is the address of
// the instruction itself and is only used by B and J targets.
func Encode(desc InstrDesc, operands []string, pc uint32, symbols SymbolTable) (uint32, error) {
	if desc.Fixed != nil {
		if err := arity(0, operands); err != nil {
			return 0, err
		}
		operands = desc.Fixed
	}

	switch desc.Format {
	case R:
		return encodeR(desc, operands)
	case I:
		return encodeI(desc, operands, symbols)
	case S:
		return encodeS(desc, operands)
	case B:
		return encodeB(desc, operands, pc, symbols)
	case U:
		return encodeU(desc, operands, symbols)
	case J:
		return encodeJ(desc, operands, pc, symbols)
	}
	return 0, newError(Syntax, "%s: unsupported format %v", desc.Mnemonic, desc.Format)
}

func arity(want int, operands []string) error {
	if len(operands) != want {
		return newError(OperandCount, "expected %d operands, got %d", want, len(operands))
	}
	return nil
}

func checkRange(v, lo, hi int64) error {
	if v < lo || v > hi {
		return newError(ImmediateRange, "%d not in [%d, %d]", v, lo, hi)
	}
	return nil
}

func parseRegisters(toks ...string) ([]uint8, error) {
	regs := make([]uint8, len(toks))
	for i, tok := range toks {
		r, err := ParseRegister(tok)
		if err != nil {
			return nil, err
		}
		regs[i] = r
	}
	return regs, nil
}

// pcOffset resolves a branch or jump target to an offset from pc. Labels
// are made relative, literals are taken as the offset itself.
func pcOffset(target string, pc uint32, symbols SymbolTable) (int64, error) {
	if addr, ok := symbols.Lookup(target); ok {
		return int64(addr) - int64(pc), nil
	}
	if v, ok := parseLiteral(target); ok {
		return v, nil
	}
	return 0, newError(UndefinedSymbol, "branch target %q", target)
}

// funct7 | rs2 | rs1 | funct3 | rd | opcode
func encodeR(d InstrDesc, ops []string) (uint32, error) {
	if err := arity(3, ops); err != nil {
		return 0, err
	}
	regs, err := parseRegisters(ops...)
	if err != nil {
		return 0, err
	}
	rd, rs1, rs2 := regs[0], regs[1], regs[2]
	return uint32(d.Funct7&0x7f)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		uint32(d.Funct3&0x7)<<12 | uint32(rd)<<7 | uint32(d.Opcode&0x7f), nil
}

// imm[11:0] | rs1 | funct3 | rd | opcode
func encodeI(d InstrDesc, ops []string, symbols SymbolTable) (uint32, error) {
	var (
		rd, rs1 uint8
		imm     int64
	)
	if d.Opcode == OpLoad {
		if err := arity(2, ops); err != nil {
			return 0, err
		}
		var err error
		if rd, err = ParseRegister(ops[0]); err != nil {
			return 0, err
		}
		if imm, rs1, err = ParseMemOperand(ops[1]); err != nil {
			return 0, err
		}
	} else {
		if err := arity(3, ops); err != nil {
			return 0, err
		}
		regs, err := parseRegisters(ops[0], ops[1])
		if err != nil {
			return 0, err
		}
		rd, rs1 = regs[0], regs[1]
		if imm, err = ParseImmediate(ops[2], symbols); err != nil {
			return 0, err
		}
	}
	if err := checkRange(imm, imm12Min, imm12Max); err != nil {
		return 0, err
	}

	imm12 := uint32(imm) & 0xfff
	if d.isShiftImm() {
		imm12 = uint32(d.Funct7&0x7f)<<5 | imm12&0x1f
	}
	return imm12<<20 | uint32(rs1)<<15 | uint32(d.Funct3&0x7)<<12 |
		uint32(rd)<<7 | uint32(d.Opcode&0x7f), nil
}

// imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | opcode
func encodeS(d InstrDesc, ops []string) (uint32, error) {
	if err := arity(2, ops); err != nil {
		return 0, err
	}
	rs2, err := ParseRegister(ops[0])
	if err != nil {
		return 0, err
	}
	offset, rs1, err := ParseMemOperand(ops[1])
	if err != nil {
		return 0, err
	}
	if err := checkRange(offset, imm12Min, imm12Max); err != nil {
		return 0, err
	}

	imm := uint32(offset)
	return (imm>>5&0x7f)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		uint32(d.Funct3&0x7)<<12 | (imm&0x1f)<<7 | uint32(d.Opcode&0x7f), nil
}

// imm[12] | imm[10:5] | rs2 | rs1 | funct3 | imm[4:1] | imm[11] | opcode
func encodeB(d InstrDesc, ops []string, pc uint32, symbols SymbolTable) (uint32, error) {
	if err := arity(3, ops); err != nil {
		return 0, err
	}
	regs, err := parseRegisters(ops[0], ops[1])
	if err != nil {
		return 0, err
	}
	rs1, rs2 := regs[0], regs[1]
	offset, err := pcOffset(ops[2], pc, symbols)
	if err != nil {
		return 0, err
	}
	if offset%2 != 0 {
		return 0, newError(Alignment, "branch offset %d is not a multiple of 2", offset)
	}
	if err := checkRange(offset, branchMin, branchMax); err != nil {
		return 0, err
	}

	imm := uint32(offset)
	return (imm>>12&0x1)<<31 | (imm>>5&0x3f)<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 |
		uint32(d.Funct3&0x7)<<12 | (imm>>1&0xf)<<8 | (imm>>11&0x1)<<7 | uint32(d.Opcode&0x7f), nil
}

// imm[31:12] | rd | opcode
func encodeU(d InstrDesc, ops []string, symbols SymbolTable) (uint32, error) {
	if err := arity(2, ops); err != nil {
		return 0, err
	}
	rd, err := ParseRegister(ops[0])
	if err != nil {
		return 0, err
	}
	imm, err := ParseImmediate(ops[1], symbols)
	if err != nil {
		return 0, err
	}
	return (uint32(imm>>12)&0xfffff)<<12 | uint32(rd)<<7 | uint32(d.Opcode&0x7f), nil
}

// imm[20] | imm[10:1] | imm[11] | imm[19:12] | rd | opcode
func encodeJ(d InstrDesc, ops []string, pc uint32, symbols SymbolTable) (uint32, error) {
	if err := arity(2, ops); err != nil {
		return 0, err
	}
	rd, err := ParseRegister(ops[0])
	if err != nil {
		return 0, err
	}
	offset, err := pcOffset(ops[1], pc, symbols)
	if err != nil {
		return 0, err
	}
	if offset%2 != 0 {
		return 0, newError(Alignment, "jump offset %d is not a multiple of 2", offset)
	}
	if err := checkRange(offset, jumpMin, jumpMax); err != nil {
		return 0, err
	}

	imm := uint32(offset)
	return (imm>>20&0x1)<<31 | (imm>>1&0x3ff)<<21 | (imm>>11&0x1)<<20 |
		(imm>>12&0xff)<<12 | uint32(rd)<<7 | uint32(d.Opcode&0x7f), nil
}
