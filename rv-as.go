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

	"github.com/golang/glog"
)

// InstrBytes is the size of every instruction.
const InstrBytes = 4

// Word is an encoded instruction and the address it was assigned.
type Word struct {
	Address uint32
	Value   uint32
}

// SymbolTable maps label names to byte addresses.
type SymbolTable map[string]uint32

// Lookup returns the address of a label.
func (st SymbolTable) Lookup(name string) (uint32, bool) {
	addr, ok := st[name]
	return addr, ok
}

// Names returns the labels ordered by address, then by name.
func (st SymbolTable) Names() []string {
	names := make([]string, 0, len(st))
	for name := range st {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if st[names[i]] != st[names[j]] {
			return st[names[i]] < st[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Program is the result of a successful run.
type Program struct {
	Words   []Word
	Symbols SymbolTable
}

type passState int

const (
	resolvingLabels passState = iota + 1
	encoding
)

// assembler holds the state of a single run.
type assembler struct {
	state   passState
	symbols SymbolTable
	defined map[string]int // label -> line that defined it
	pc      uint32
}

// Assemble translates source lines into machine words. Labels may be
// referenced before they are defined. The first error aborts the run.
func Assemble(lines []string) (*Program, error) {
	a := &assembler{
		symbols: make(SymbolTable),
		defined: make(map[string]int),
	}
	if err := a.resolveLabels(lines); err != nil {
		return nil, err
	}
	words, err := a.encode(lines)
	if err != nil {
		return nil, err
	}
	return &Program{Words: words, Symbols: a.symbols}, nil
}

// AssembleString splits src into lines and assembles them.
func AssembleString(src string) (*Program, error) {
	return Assemble(SplitLines(src))
}

// SplitLines splits source text on newlines, dropping carriage returns.
func SplitLines(src string) []string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (a *assembler) resolveLabels(lines []string) error {
	a.state, a.pc = resolvingLabels, 0
	glog.V(1).Infof("beginning pass %d over %d lines", a.state, len(lines))

	for i, raw := range lines {
		label, rest, err := splitLabel(stripComment(raw))
		if err != nil {
			return at(err, i+1, strings.TrimSpace(raw))
		}
		if label != "" {
			if prev, dup := a.defined[label]; dup {
				return at(newError(DuplicateLabel, "%q already defined on line %d", label, prev), i+1, strings.TrimSpace(raw))
			}
			a.defined[label] = i + 1
			a.symbols[label] = a.pc
			glog.V(2).Infof("defining %q at 0x%x", label, a.pc)
		}
		if rest != "" {
			a.pc += InstrBytes
		}
	}
	return nil
}

func (a *assembler) encode(lines []string) ([]Word, error) {
	a.state, a.pc = encoding, 0
	glog.V(1).Infof("beginning pass %d, %d labels", a.state, len(a.symbols))

	var words []Word
	for i, raw := range lines {
		line, err := ParseLine(raw)
		if err != nil {
			return nil, at(err, i+1, strings.TrimSpace(raw))
		}
		if line.Empty() {
			continue
		}
		value, err := Encode(line.Desc, line.Operands, a.pc, a.symbols)
		if err != nil {
			return nil, at(err, i+1, strings.TrimSpace(raw))
		}
		glog.V(2).Infof("0x%08x: %08x  %s", a.pc, value, strings.TrimSpace(raw))
		words = append(words, Word{Address: a.pc, Value: value})
		a.pc += InstrBytes
	}
	glog.V(1).Infof("assembled %d words", len(words))
	return words, nil
}
