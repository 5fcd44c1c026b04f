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

// Error classes raised while assembling.
const (
	Syntax = Errno(iota)
	UnknownRegister
	OperandFormat
	OperandCount
	ImmediateRange
	Alignment
	DuplicateLabel
	UndefinedSymbol
)

var strError = []string{
	"syntax error",
	"unknown register",
	"bad operand",
	"wrong operand count",
	"immediate out of range",
	"misaligned offset",
	"duplicate label",
	"undefined symbol",
}

// Errno classifies an assembly failure.
type Errno int

func (e Errno) Error() string {
	if e < 0 || int(e) >= len(strError) {
		return fmt.Sprintf("errno %d", int(e))
	}
	return strError[e]
}

// Error describes an assembly failure and the source line that caused it.
// Line and Source are zero when the error was raised outside of a run,
// e.g. by calling Encode directly.
type Error struct {
	Errno  Errno  // class of the failure
	Line   int    // 1-based source line
	Source string // source line as written
	Detail string // offending token or computed value
}

func (e *Error) Error() string {
	msg := e.Errno.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Source != "" {
		msg += fmt.Sprintf(" (%s)", e.Source)
	}
	return msg
}

// Unwrap exposes the class so that errors.Is(err, rv_as.Alignment) works.
func (e *Error) Unwrap() error {
	return e.Errno
}

func newError(errno Errno, format string, args ...interface{}) *Error {
	return &Error{Errno: errno, Detail: fmt.Sprintf(format, args...)}
}

// at attaches source context to err if it is an *Error without one.
func at(err error, line int, source string) error {
	if e, ok := err.(*Error); ok && e.Line == 0 {
		e.Line, e.Source = line, source
	}
	return err
}
