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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRvAssembler(t *testing.T) {
	testCases := []struct {
		ins string
	}{
		// R
		{"    WORD $0x003100b3 // add x1, x2, x3"},
		{"    WORD $0x407302b3 // sub t0, t1, t2"},
		{"    WORD $0x00c5f533 // and a0, a1, a2"},
		{"    WORD $0x0124e433 // or s0, s1, s2"},
		{"    WORD $0x01df4fb3 // xor x31, x30, x29"},
		{"    WORD $0x007312b3 // sll x5, x6, x7"},
		{"    WORD $0x007352b3 // srl x5, x6, x7"},
		{"    WORD $0x407352b3 // sra x5, x6, x7"},
		{"    WORD $0x00c5a533 // slt a0, a1, a2"},
		{"    WORD $0x00c5b533 // sltu a0, a1, a2"},
		{"    WORD $0x003100b3 // ADD X1, X2, X3"},
		{"    WORD $0x00c5f533 // and   a0,a1,   a2"},
		//
		// I
		{"    WORD $0x00a00293 // addi x5, x0, 10"},
		{"    WORD $0xff010113 // addi sp, sp, -16"},
		{"    WORD $0x0ff57513 // andi a0, a0, 0xff"},
		{"    WORD $0x00a56513 // ori a0, a0, 0b1010"},
		{"    WORD $0xfff5c593 // xori a1, a1, -1"},
		{"    WORD $0x7ff32293 // slti t0, t1, 2047"},
		{"    WORD $0x80033293 // sltiu t0, t1, -2048"},
		{"    WORD $0x00351513 // slli a0, a0, 3"},
		{"    WORD $0x01f55513 // srli a0, a0, 31"},
		{"    WORD $0x40455513 // srai a0, a0, 4"},
		{"    WORD $0x0002a303 // lw x6, 0(x5)"},
		{"    WORD $0xffc12083 // lw ra, -4(sp)"},
		{"    WORD $0x00158503 // lb a0, 1(a1)"},
		{"    WORD $0x00159503 // lh a0, 1(a1)"},
		{"    WORD $0x0015c503 // lbu a0, 1(a1)"},
		{"    WORD $0x0015d503 // lhu a0, 1(a1)"},
		{"    WORD $0x000080e7 // jalr ra, x1, 0"},
		{"    WORD $0x00808067 // jalr x0, ra, 8"},
		{"    WORD $0x00000013 // nop"},
		{"    WORD $0x00000073 // ecall"},
		{"    WORD $0x00100073 // ebreak"},
		//
		// S
		{"    WORD $0x0062a223 // sw x6, 4(x5)"},
		{"    WORD $0xfe112c23 // sw ra, -8(sp)"},
		{"    WORD $0x7ea12fa3 // sw a0, 2047(sp)"},
		{"    WORD $0x00a101a3 // sb a0, 3(sp)"},
		{"    WORD $0x00a111a3 // sh a0, 3(sp)"},
		//
		// U
		{"    WORD $0x12345537 // lui a0, 0x12345000"},
		{"    WORD $0x000012b7 // lui t0, 4096"},
		{"    WORD $0x00000097 // auipc ra, 0"},
		{"    WORD $0x7ffff197 // auipc gp, 0x7ffff000"},
		//
		// B, literal offsets
		{"    WORD $0x00208263 // beq x1, x2, 4"},
		{"    WORD $0xfe051ce3 // bne a0, zero, -8"},
		{"    WORD $0x7e62cfe3 // blt t0, t1, 4094"},
		{"    WORD $0x80945063 // bge s0, s1, -4096"},
		{"    WORD $0x00b56863 // bltu a0, a1, 16"},
		{"    WORD $0x00b570e3 // bgeu a0, a1, 2048"},
		//
		// J, literal offsets
		{"    WORD $0x008000ef // jal x1, 8"},
		{"    WORD $0xffdff06f // jal zero, -4"},
		{"    WORD $0x7ffff0ef // jal ra, 1048574"},
		{"    WORD $0x800000ef // jal ra, -1048576"},
		{"    WORD $0x0010006f // jal x0, 2048"},
	}

	for i, tc := range testCases {
		ins := strings.TrimSpace(strings.Split(tc.ins, "//")[1])
		prog, err := Assemble([]string{ins})
		if err != nil {
			t.Errorf("TestRvAssembler(%d): `%s`: %v", i, ins, err)
			continue
		}
		if len(prog.Words) != 1 {
			t.Errorf("TestRvAssembler(%d): `%s`: got %d words", i, ins, len(prog.Words))
			continue
		}
		oc := prog.Words[0].Value
		opcode := fmt.Sprintf("0x%08x ", oc)
		if !strings.Contains(tc.ins, opcode) {
			t.Errorf("TestRvAssembler(%d): `%s`: got: %s want: %s", i, ins, opcode, strings.Fields(tc.ins)[1][1:])
			ocWant, err := strconv.ParseUint(strings.Fields(tc.ins)[1][3:], 16, 32)
			if err == nil {
				t.Logf("got  %032s", strconv.FormatUint(uint64(oc), 2))
				t.Logf("want %032s", strconv.FormatUint(ocWant, 2))
			}
		}
	}
}

const sumProgram = `# sum the numbers 1..10
start:
    addi t0, zero, 10      # counter
    addi a0, zero, 0
loop:   add a0, a0, t0
    addi t0, t0, -1
    bne t0, zero, loop
    jal ra, end
    lui a1, start
end:
    sw a0, 0(sp)
    jalr zero, ra, 0
`

func TestAssembleProgram(t *testing.T) {
	prog, err := AssembleString(sumProgram)
	if err != nil {
		t.Fatal(err)
	}
	want := []Word{
		{Address: 0x00, Value: 0x00a00293},
		{Address: 0x04, Value: 0x00000513},
		{Address: 0x08, Value: 0x00550533},
		{Address: 0x0c, Value: 0xfff28293},
		{Address: 0x10, Value: 0xfe029ce3},
		{Address: 0x14, Value: 0x008000ef},
		{Address: 0x18, Value: 0x000005b7},
		{Address: 0x1c, Value: 0x00a12023},
		{Address: 0x20, Value: 0x00008067},
	}
	if diff := cmp.Diff(want, prog.Words); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
	wantSymbols := SymbolTable{"start": 0x00, "loop": 0x08, "end": 0x1c}
	if diff := cmp.Diff(wantSymbols, prog.Symbols); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"start", "loop", "end"}, prog.Symbols.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestAddressSequence(t *testing.T) {
	prog, err := AssembleString(sumProgram)
	if err != nil {
		t.Fatal(err)
	}
	instrLines := 0
	for _, line := range SplitLines(sumProgram) {
		l, err := ParseLine(line)
		if err != nil {
			t.Fatal(err)
		}
		if !l.Empty() {
			instrLines++
		}
	}
	if len(prog.Words) != instrLines {
		t.Fatalf("got %d words, want %d", len(prog.Words), instrLines)
	}
	for i, w := range prog.Words {
		if w.Address != uint32(i*InstrBytes) {
			t.Errorf("word %d at 0x%x, want 0x%x", i, w.Address, i*InstrBytes)
		}
	}
}

func TestIdempotent(t *testing.T) {
	first, err := AssembleString(sumProgram)
	if err != nil {
		t.Fatal(err)
	}
	second, err := AssembleString(sumProgram)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestSpecExample(t *testing.T) {
	prog, err := AssembleString("addi x5, x0, 10\nlw x6, 0(x5)\nsw x6, 4(x5)")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Words) != 3 {
		t.Fatalf("got %d words", len(prog.Words))
	}
	for i, w := range prog.Words {
		if w.Address != uint32(4*i) {
			t.Errorf("word %d at address %d", i, w.Address)
		}
	}
	if want := uint32(10<<20 | 0<<15 | 0<<12 | 5<<7 | 0b0010011); prog.Words[0].Value != want {
		t.Errorf("addi: got 0x%08x want 0x%08x", prog.Words[0].Value, want)
	}
}

func TestForwardLabel(t *testing.T) {
	src := "jal x1, end\naddi x0, x0, 0\naddi x0, x0, 0\nend:\naddi x1, x1, 1"
	prog, err := AssembleString(src)
	if err != nil {
		t.Fatal(err)
	}
	if got := prog.Symbols["end"]; got != 12 {
		t.Fatalf("end at %d, want 12", got)
	}
	f, _ := Decode(prog.Words[0].Value)
	if f.Imm != 12 || f.Rd != 1 {
		t.Errorf("jal decoded as %+v", f)
	}
	if prog.Words[0].Value != 0x00c000ef {
		t.Errorf("got 0x%08x", prog.Words[0].Value)
	}
}

func TestBackwardBranch(t *testing.T) {
	prog, err := AssembleString("top: nop\nnop\nbeq a0, a1, top\njal zero, top")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []int32{-8, -12} {
		f, _ := Decode(prog.Words[2+i].Value)
		if f.Imm != want {
			t.Errorf("word %d: offset %d, want %d", 2+i, f.Imm, want)
		}
	}
}

func TestLabels(t *testing.T) {
	prog, err := AssembleString("a:\nb:\n\n# comment only\nc: nop\nd:nop\ne:")
	if err != nil {
		t.Fatal(err)
	}
	want := SymbolTable{"a": 0, "b": 0, "c": 0, "d": 4, "e": 8}
	if diff := cmp.Diff(want, prog.Symbols); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
	if len(prog.Words) != 2 {
		t.Errorf("got %d words", len(prog.Words))
	}
}

func TestLabelAsImmediate(t *testing.T) {
	prog, err := AssembleString("nop\nnop\ndata: nop\naddi a0, zero, data\nlui a1, data\njalr ra, zero, data")
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range prog.Words[3:] {
		f, _ := Decode(w.Value)
		if f.Format == I && f.Imm != 8 {
			t.Errorf("0x%08x: imm %d, want 8", w.Value, f.Imm)
		}
	}
	if prog.Words[4].Value != 0x000005b7 {
		t.Errorf("lui: got 0x%08x", prog.Words[4].Value)
	}
}

func TestCRLF(t *testing.T) {
	prog, err := AssembleString("start:\r\naddi x5, x0, 10\r\nbeq x0, x0, start\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Words) != 2 || prog.Words[0].Value != 0x00a00293 {
		t.Errorf("got %+v", prog.Words)
	}
}

func TestAssembleErrors(t *testing.T) {
	testCases := []struct {
		src   string
		errno Errno
		line  int
	}{
		{"frob x1, x2, x3", Syntax, 1},
		{"nop\nbad-label: nop", Syntax, 2},
		{":nop", Syntax, 1},
		{"add x1, x2, x32", UnknownRegister, 1},
		{"add x1, x2, q1", UnknownRegister, 1},
		{"add x1, x2,, x3", OperandCount, 1},
		{"add x1, x2", OperandCount, 1},
		{"lw x1, 0(x2), 4", OperandCount, 1},
		{"nop x1", OperandCount, 1},
		{"jal x1", OperandCount, 1},
		{"lw x1, x2", OperandFormat, 1},
		{"lw x1, 4(x2", OperandFormat, 1},
		{"sw x1, 4(x2)junk", OperandFormat, 1},
		{"sw x1, 0x4(x2)", OperandFormat, 1},
		{"lw x1, 4(q2)", UnknownRegister, 1},
		{"addi x1, x2, 12z", OperandFormat, 1},
		{"addi x1, x2, 0x", OperandFormat, 1},
		{"addi x1, x2, 010_0", OperandFormat, 1},
		{"addi x1, x2, nowhere", UndefinedSymbol, 1},
		{"addi x1, x2, 2048", ImmediateRange, 1},
		{"addi x1, x2, -2049", ImmediateRange, 1},
		{"lw x1, 2048(x2)", ImmediateRange, 1},
		{"sw x1, -2049(x2)", ImmediateRange, 1},
		{"slli x1, x2, 4096", ImmediateRange, 1},
		{"beq x1, x2, 3", Alignment, 1},
		{"beq x1, x2, 4096", ImmediateRange, 1},
		{"bne x1, x2, -4098", ImmediateRange, 1},
		{"jal x1, 1", Alignment, 1},
		{"jal x1, 1048576", ImmediateRange, 1},
		{"jal x1, -1048578", ImmediateRange, 1},
		{"beq x1, x2, nowhere", UndefinedSymbol, 1},
		{"jal x1, 12z", UndefinedSymbol, 1},
		{"loop: nop\nloop: nop", DuplicateLabel, 2},
	}

	for i, tc := range testCases {
		_, err := AssembleString(tc.src)
		if err == nil {
			t.Errorf("TestAssembleErrors(%d): `%s`: expected %v", i, tc.src, tc.errno)
			continue
		}
		if !errors.Is(err, tc.errno) {
			t.Errorf("TestAssembleErrors(%d): `%s`: got %v, want %v", i, tc.src, err, tc.errno)
			continue
		}
		var e *Error
		if !errors.As(err, &e) {
			t.Errorf("TestAssembleErrors(%d): `%s`: %T is not *Error", i, tc.src, err)
			continue
		}
		if e.Line != tc.line {
			t.Errorf("TestAssembleErrors(%d): `%s`: line %d, want %d", i, tc.src, e.Line, tc.line)
		}
		if e.Source == "" {
			t.Errorf("TestAssembleErrors(%d): `%s`: no source context in %v", i, tc.src, err)
		}
	}
}

func TestImmediateBoundaries(t *testing.T) {
	for _, tc := range []struct {
		ins string
		ok  bool
	}{
		{"addi a0, a0, 2047", true},
		{"addi a0, a0, 2048", false},
		{"addi a0, a0, -2048", true},
		{"addi a0, a0, -2049", false},
		{"lw a0, 2047(a1)", true},
		{"lw a0, 2048(a1)", false},
		{"lw a0, -2048(a1)", true},
		{"lw a0, -2049(a1)", false},
		{"sw a0, 2047(a1)", true},
		{"sw a0, 2048(a1)", false},
		{"sw a0, -2048(a1)", true},
		{"sw a0, -2049(a1)", false},
		{"beq a0, a1, 4", true},
		{"beq a0, a1, 4094", true},
		{"beq a0, a1, -4096", true},
		{"jal a0, 1048574", true},
		{"jal a0, -1048576", true},
	} {
		_, err := Assemble([]string{tc.ins})
		if tc.ok && err != nil {
			t.Errorf("`%s`: unexpected error %v", tc.ins, err)
		} else if !tc.ok && !errors.Is(err, ImmediateRange) {
			t.Errorf("`%s`: got %v, want %v", tc.ins, err, ImmediateRange)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	_, err := AssembleString("nop\n  addi x1, x0, 4096  # too big")
	if err == nil {
		t.Fatal("expected error")
	}
	want := "line 2: immediate out of range: 4096 not in [-2048, 2047] (addi x1, x0, 4096  # too big)"
	if diff := cmp.Diff(want, err.Error()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNoPartialOutput(t *testing.T) {
	prog, err := AssembleString("nop\nnop\nbeq x1, x2, 3\nnop")
	if err == nil || prog != nil {
		t.Fatalf("got %v, %v", prog, err)
	}
}
