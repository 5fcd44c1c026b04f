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

import (
	"sort"
	"strings"
)

// Format is one of the six RV32I instruction encodings.
type Format uint8

const (
	R Format = iota // register-register
	I               // immediate, loads, jalr, system
	S               // stores
	B               // branches
	U               // lui, auipc
	J               // jal
)

func (f Format) String() string {
	if int(f) < len("RISBUJ") {
		return "RISBUJ"[f : f+1]
	}
	return "?"
}

// Major opcodes (bits 6:0).
const (
	OpLoad   = 0b0000011
	OpImm    = 0b0010011
	OpAuipc  = 0b0010111
	OpStore  = 0b0100011
	OpReg    = 0b0110011
	OpLui    = 0b0110111
	OpBranch = 0b1100011
	OpJalr   = 0b1100111
	OpJal    = 0b1101111
	OpSystem = 0b1110011
)

// InstrDesc holds the fixed bit-fields of a mnemonic. Funct3 is ignored
// by U and J, Funct7 is only read for R and the immediate shifts.
type InstrDesc struct {
	Mnemonic string
	Format   Format
	Opcode   uint8
	Funct3   uint8
	Funct7   uint8

	// Fixed, when non-nil, replaces the source operands: the mnemonic
	// takes no operands and encodes as if Fixed had been written.
	Fixed []string
}

var instrTable = newInstrTable()

func newInstrTable() map[string]InstrDesc {
	t := make(map[string]InstrDesc, 48)
	add := func(d InstrDesc) {
		if _, dup := t[d.Mnemonic]; dup {
			panic("duplicate mnemonic " + d.Mnemonic)
		}
		t[d.Mnemonic] = d
	}

	// R
	add(InstrDesc{Mnemonic: "add", Format: R, Opcode: OpReg, Funct3: 0b000, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "sub", Format: R, Opcode: OpReg, Funct3: 0b000, Funct7: 0b0100000})
	add(InstrDesc{Mnemonic: "sll", Format: R, Opcode: OpReg, Funct3: 0b001, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "slt", Format: R, Opcode: OpReg, Funct3: 0b010, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "sltu", Format: R, Opcode: OpReg, Funct3: 0b011, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "xor", Format: R, Opcode: OpReg, Funct3: 0b100, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "srl", Format: R, Opcode: OpReg, Funct3: 0b101, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "sra", Format: R, Opcode: OpReg, Funct3: 0b101, Funct7: 0b0100000})
	add(InstrDesc{Mnemonic: "or", Format: R, Opcode: OpReg, Funct3: 0b110, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "and", Format: R, Opcode: OpReg, Funct3: 0b111, Funct7: 0b0000000})

	// I, arithmetic and logic
	add(InstrDesc{Mnemonic: "addi", Format: I, Opcode: OpImm, Funct3: 0b000})
	add(InstrDesc{Mnemonic: "slti", Format: I, Opcode: OpImm, Funct3: 0b010})
	add(InstrDesc{Mnemonic: "sltiu", Format: I, Opcode: OpImm, Funct3: 0b011})
	add(InstrDesc{Mnemonic: "xori", Format: I, Opcode: OpImm, Funct3: 0b100})
	add(InstrDesc{Mnemonic: "ori", Format: I, Opcode: OpImm, Funct3: 0b110})
	add(InstrDesc{Mnemonic: "andi", Format: I, Opcode: OpImm, Funct3: 0b111})
	add(InstrDesc{Mnemonic: "slli", Format: I, Opcode: OpImm, Funct3: 0b001, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "srli", Format: I, Opcode: OpImm, Funct3: 0b101, Funct7: 0b0000000})
	add(InstrDesc{Mnemonic: "srai", Format: I, Opcode: OpImm, Funct3: 0b101, Funct7: 0b0100000})

	// I, loads
	add(InstrDesc{Mnemonic: "lb", Format: I, Opcode: OpLoad, Funct3: 0b000})
	add(InstrDesc{Mnemonic: "lh", Format: I, Opcode: OpLoad, Funct3: 0b001})
	add(InstrDesc{Mnemonic: "lw", Format: I, Opcode: OpLoad, Funct3: 0b010})
	add(InstrDesc{Mnemonic: "lbu", Format: I, Opcode: OpLoad, Funct3: 0b100})
	add(InstrDesc{Mnemonic: "lhu", Format: I, Opcode: OpLoad, Funct3: 0b101})

	add(InstrDesc{Mnemonic: "jalr", Format: I, Opcode: OpJalr, Funct3: 0b000})

	// S
	add(InstrDesc{Mnemonic: "sb", Format: S, Opcode: OpStore, Funct3: 0b000})
	add(InstrDesc{Mnemonic: "sh", Format: S, Opcode: OpStore, Funct3: 0b001})
	add(InstrDesc{Mnemonic: "sw", Format: S, Opcode: OpStore, Funct3: 0b010})

	// B
	add(InstrDesc{Mnemonic: "beq", Format: B, Opcode: OpBranch, Funct3: 0b000})
	add(InstrDesc{Mnemonic: "bne", Format: B, Opcode: OpBranch, Funct3: 0b001})
	add(InstrDesc{Mnemonic: "blt", Format: B, Opcode: OpBranch, Funct3: 0b100})
	add(InstrDesc{Mnemonic: "bge", Format: B, Opcode: OpBranch, Funct3: 0b101})
	add(InstrDesc{Mnemonic: "bltu", Format: B, Opcode: OpBranch, Funct3: 0b110})
	add(InstrDesc{Mnemonic: "bgeu", Format: B, Opcode: OpBranch, Funct3: 0b111})

	// U
	add(InstrDesc{Mnemonic: "lui", Format: U, Opcode: OpLui})
	add(InstrDesc{Mnemonic: "auipc", Format: U, Opcode: OpAuipc})

	// J
	add(InstrDesc{Mnemonic: "jal", Format: J, Opcode: OpJal})

	// fixed operands
	add(InstrDesc{Mnemonic: "nop", Format: I, Opcode: OpImm, Funct3: 0b000, Fixed: []string{"x0", "x0", "0"}})
	add(InstrDesc{Mnemonic: "ecall", Format: I, Opcode: OpSystem, Funct3: 0b000, Fixed: []string{"x0", "x0", "0"}})
	add(InstrDesc{Mnemonic: "ebreak", Format: I, Opcode: OpSystem, Funct3: 0b000, Fixed: []string{"x0", "x0", "1"}})

	return t
}

// Lookup returns the descriptor for a mnemonic, ignoring case.
func Lookup(mnemonic string) (InstrDesc, bool) {
	d, ok := instrTable[strings.ToLower(mnemonic)]
	return d, ok
}

// Mnemonics returns every known mnemonic in sorted order.
func Mnemonics() []string {
	names := make([]string, 0, len(instrTable))
	for name := range instrTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isShiftImm reports whether d is slli, srli or srai, whose immediate is
// funct7 followed by a 5-bit shift amount.
func (d InstrDesc) isShiftImm() bool {
	return d.Opcode == OpImm && (d.Funct3 == 0b001 || d.Funct3 == 0b101)
}
