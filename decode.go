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

import "fmt"

// Fields are the bit-fields of an encoded word. Fields that the word's
// format does not carry are zero.
type Fields struct {
	Format Format
	Opcode uint8
	Rd     uint8
	Rs1    uint8
	Rs2    uint8
	Funct3 uint8
	Funct7 uint8
	Imm    int32 // sign-extended; for U the value already shifted into place
}

var formatOf = map[uint8]Format{
	OpLoad:   I,
	OpImm:    I,
	OpAuipc:  U,
	OpStore:  S,
	OpReg:    R,
	OpLui:    U,
	OpBranch: B,
	OpJalr:   I,
	OpJal:    J,
	OpSystem: I,
}

func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// Decode extracts the fields of word. It returns false if the major
// opcode is not one this assembler emits.
func Decode(word uint32) (Fields, bool) {
	f := Fields{Opcode: uint8(word & 0x7f)}
	format, ok := formatOf[f.Opcode]
	if !ok {
		return f, false
	}
	f.Format = format

	rd := uint8(word >> 7 & 0x1f)
	funct3 := uint8(word >> 12 & 0x7)
	rs1 := uint8(word >> 15 & 0x1f)
	rs2 := uint8(word >> 20 & 0x1f)

	switch format {
	case R:
		f.Rd, f.Funct3, f.Rs1, f.Rs2 = rd, funct3, rs1, rs2
		f.Funct7 = uint8(word >> 25)
	case I:
		f.Rd, f.Funct3, f.Rs1 = rd, funct3, rs1
		f.Imm = int32(word) >> 20
		if f.Opcode == OpImm && (funct3 == 0b001 || funct3 == 0b101) {
			f.Funct7 = uint8(word >> 25)
			f.Imm = int32(word >> 20 & 0x1f)
		}
	case S:
		f.Funct3, f.Rs1, f.Rs2 = funct3, rs1, rs2
		f.Imm = int32(word)>>25<<5 | int32(word>>7&0x1f)
	case B:
		f.Funct3, f.Rs1, f.Rs2 = funct3, rs1, rs2
		f.Imm = signExtend(word>>31&0x1<<12|word>>7&0x1<<11|word>>25&0x3f<<5|word>>8&0xf<<1, 13)
	case U:
		f.Rd = rd
		f.Imm = int32(word & 0xfffff000)
	case J:
		f.Rd = rd
		f.Imm = signExtend(word>>31&0x1<<20|word>>12&0xff<<12|word>>20&0x1<<11|word>>21&0x3ff<<1, 21)
	}
	return f, true
}

type disKey struct {
	opcode, funct3, funct7 uint8
}

func keyOf(opcode, funct3, funct7 uint8) disKey {
	switch formatOf[opcode] {
	case U, J:
		return disKey{opcode: opcode}
	case R:
		return disKey{opcode, funct3, funct7}
	}
	if opcode == OpImm && (funct3 == 0b001 || funct3 == 0b101) {
		return disKey{opcode, funct3, funct7}
	}
	return disKey{opcode: opcode, funct3: funct3}
}

var disTable, fixedWords = newDisTables()

func newDisTables() (map[disKey]InstrDesc, map[uint32]string) {
	keys := make(map[disKey]InstrDesc, len(instrTable))
	fixed := make(map[uint32]string)
	for _, name := range Mnemonics() {
		d := instrTable[name]
		if d.Fixed != nil {
			word, err := Encode(d, nil, 0, nil)
			if err != nil {
				panic(err)
			}
			fixed[word] = d.Mnemonic
			continue
		}
		keys[keyOf(d.Opcode, d.Funct3, d.Funct7)] = d
	}
	return keys, fixed
}

// Disassemble renders word, located at pc, as a source line that
// assembles back to the same word. Branch and jump targets are written
// as offsets followed by a comment holding the absolute address.
func Disassemble(word, pc uint32) string {
	if name, ok := fixedWords[word]; ok {
		return name
	}
	f, ok := Decode(word)
	if !ok {
		return fmt.Sprintf(".word 0x%08x", word)
	}
	d, ok := disTable[keyOf(f.Opcode, f.Funct3, f.Funct7)]
	if !ok {
		return fmt.Sprintf(".word 0x%08x", word)
	}

	rd, rs1, rs2 := RegisterName(f.Rd), RegisterName(f.Rs1), RegisterName(f.Rs2)
	switch d.Format {
	case R:
		return fmt.Sprintf("%s %s, %s, %s", d.Mnemonic, rd, rs1, rs2)
	case I:
		if d.Opcode == OpLoad {
			return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, rd, f.Imm, rs1)
		}
		return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, rd, rs1, f.Imm)
	case S:
		return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, rs2, f.Imm, rs1)
	case B:
		return fmt.Sprintf("%s %s, %s, %d # 0x%x", d.Mnemonic, rs1, rs2, f.Imm, pc+uint32(f.Imm))
	case U:
		return fmt.Sprintf("%s %s, 0x%x", d.Mnemonic, rd, uint32(f.Imm))
	case J:
		return fmt.Sprintf("%s %s, %d # 0x%x", d.Mnemonic, rd, f.Imm, pc+uint32(f.Imm))
	}
	return fmt.Sprintf(".word 0x%08x", word)
}
