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
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	labelName  = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	memOperand = regexp.MustCompile(`^([+-]?[0-9]+)\(([^()\s]+)\)$`)
)

// Line is a parsed source line. A line holding only a label, a comment or
// nothing has an empty Mnemonic.
type Line struct {
	Label    string
	Mnemonic string
	Operands []string
	Desc     InstrDesc
}

// Empty reports whether the line produces no instruction.
func (l Line) Empty() bool {
	return l.Mnemonic == ""
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx != -1 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// splitLabel separates a leading "name:" from the rest of a stripped line.
func splitLabel(s string) (label, rest string, err error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || !strings.Contains(fields[0], ":") {
		return "", s, nil
	}
	idx := strings.IndexByte(s, ':')
	label = s[:idx]
	if !labelName.MatchString(label) {
		return "", "", newError(Syntax, "malformed label %q", label)
	}
	return label, strings.TrimSpace(s[idx+1:]), nil
}

// ParseLine strips comments and the label from a source line and splits
// what is left into a mnemonic and its comma separated operands.
func ParseLine(raw string) (Line, error) {
	var l Line
	label, rest, err := splitLabel(stripComment(raw))
	if err != nil {
		return l, err
	}
	l.Label = label
	if rest == "" {
		return l, nil
	}

	fields := strings.Fields(rest)
	l.Mnemonic = strings.ToLower(fields[0])
	desc, ok := Lookup(l.Mnemonic)
	if !ok {
		return l, newError(Syntax, "unknown mnemonic %q", fields[0])
	}
	l.Desc = desc

	if ops := strings.Join(fields[1:], " "); ops != "" {
		for _, op := range strings.Split(ops, ",") {
			l.Operands = append(l.Operands, strings.TrimSpace(op))
		}
	}
	return l, nil
}

// ParseImmediate resolves tok to a label address or a decimal, 0x hex or
// 0b binary literal.
func ParseImmediate(tok string, symbols SymbolTable) (int64, error) {
	tok = strings.TrimSpace(tok)
	if addr, ok := symbols.Lookup(tok); ok {
		return int64(addr), nil
	}
	if v, ok := parseLiteral(tok); ok {
		return v, nil
	}
	if isIdent(tok) {
		return 0, newError(UndefinedSymbol, "%q", tok)
	}
	return 0, newError(OperandFormat, "bad immediate %q", tok)
}

func parseLiteral(tok string) (int64, bool) {
	s, neg := tok, false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, s = 16, s[2:]
		case 'b', 'B':
			base, s = 2, s[2:]
		}
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	u, err := strconv.ParseUint(s, base, 64)
	if err != nil || u > math.MaxInt64 {
		return 0, false
	}
	if neg {
		return -int64(u), true
	}
	return int64(u), true
}

func isIdent(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// ParseMemOperand splits "offset(register)" into its signed decimal offset
// and register index.
func ParseMemOperand(tok string) (int64, uint8, error) {
	tok = strings.TrimSpace(tok)
	m := memOperand.FindStringSubmatch(tok)
	if m == nil {
		return 0, 0, newError(OperandFormat, "expected offset(register), got %q", tok)
	}
	offset, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, 0, newError(OperandFormat, "bad offset %q", m[1])
	}
	reg, err := ParseRegister(m[2])
	if err != nil {
		return 0, 0, err
	}
	return offset, reg, nil
}
