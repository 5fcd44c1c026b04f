// Package listing renders assembled words in the text and binary forms
// consumed by simulators and HDL test benches.
package listing

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	rv_as "github.com/fwessels/rv-as"
)

// Format selects an output rendering.
type Format string

const (
	Listing Format = "listing" // address, hex and binary per word
	MemInit Format = "meminit" // instr_mem[i] = 32'h........;
	Hex     Format = "hex"     // one word per line, readmemh compatible
	Binary  Format = "bin"     // raw little-endian words
	Text    Format = "text"    // listing followed by meminit
)

// Formats lists the accepted format names.
var Formats = []Format{Text, Listing, MemInit, Hex, Binary}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Options tweak the text renderings.
type Options struct {
	Annotate bool // append the disassembly of each word to listing lines
}

// Write renders words to w in format f.
func Write(w io.Writer, f Format, words []rv_as.Word, opts Options) error {
	bw := bufio.NewWriter(w)
	var err error
	switch f {
	case Listing:
		err = writeListing(bw, words, opts)
	case MemInit:
		err = writeMemInit(bw, words)
	case Hex:
		err = writeHex(bw, words)
	case Binary:
		err = writeBinary(bw, words)
	case Text:
		if err = writeListing(bw, words, opts); err == nil {
			if _, err = bw.WriteString("\n\n"); err == nil {
				err = writeMemInit(bw, words)
			}
		}
	default:
		err = fmt.Errorf("unknown output format %q", f)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Line formats a single listing line.
func Line(word rv_as.Word, annotate bool) string {
	line := fmt.Sprintf("0x%08x: 0x%08x 0b%032b", word.Address, word.Value, word.Value)
	if annotate {
		line += "  # " + rv_as.Disassemble(word.Value, word.Address)
	}
	return line
}

func writeListing(w *bufio.Writer, words []rv_as.Word, opts Options) error {
	for _, word := range words {
		if _, err := fmt.Fprintln(w, Line(word, opts.Annotate)); err != nil {
			return err
		}
	}
	return nil
}

func writeMemInit(w *bufio.Writer, words []rv_as.Word) error {
	if _, err := fmt.Fprintln(w, "// Memory initialization format"); err != nil {
		return err
	}
	for i, word := range words {
		if _, err := fmt.Fprintf(w, "instr_mem[%d] = 32'h%08x;\n", i, word.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeHex(w *bufio.Writer, words []rv_as.Word) error {
	for _, word := range words {
		if _, err := fmt.Fprintf(w, "%08x\n", word.Value); err != nil {
			return err
		}
	}
	return nil
}

func writeBinary(w *bufio.Writer, words []rv_as.Word) error {
	buf := make([]byte, rv_as.InstrBytes)
	for _, word := range words {
		binary.LittleEndian.PutUint32(buf, word.Value)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
