package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	rv_as "github.com/fwessels/rv-as"
	"github.com/fwessels/rv-as/internal/listing"
)

type options struct {
	output   string
	format   string
	annotate bool
	symbols  bool
}

// assemble turns source text into the rendering selected by opts.
func assemble(buf []byte, w io.Writer, opts options) (*rv_as.Program, error) {
	format, err := listing.ParseFormat(opts.format)
	if err != nil {
		return nil, err
	}
	prog, err := rv_as.AssembleString(string(buf))
	if err != nil {
		return nil, err
	}
	if err := listing.Write(w, format, prog.Words, listing.Options{Annotate: opts.annotate}); err != nil {
		return nil, err
	}
	return prog, nil
}

func readSource(args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		buf, err := io.ReadAll(os.Stdin)
		return buf, "<stdin>", err
	}
	buf, err := os.ReadFile(args[0])
	return buf, args[0], err
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "rv-as [file.s]",
		Short: "Assemble RV32I source into 32-bit machine words",
		Long: `rv-as assembles RV32I base integer instructions into machine words.
Source is read from the named file, or from stdin when no file or "-" is given.
Labels end in ':' and '#' starts a comment.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, name, err := readSource(args)
			if err != nil {
				return err
			}
			glog.V(1).Infof("assembling %s (%d bytes)", name, len(buf))

			out := cmd.OutOrStdout()
			if opts.output != "" && opts.output != "-" {
				f, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			} else if opts.format == string(listing.Binary) && term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("refusing to write binary output to a terminal, use -o")
			}

			prog, err := assemble(buf, out, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if opts.symbols {
				spew.Fdump(cmd.ErrOrStderr(), prog.Symbols)
			}
			glog.V(1).Infof("%s: %d words, %d labels", name, len(prog.Words), len(prog.Symbols))
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write output to `file` instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(listing.Text), "output format: text, listing, meminit, hex or bin")
	cmd.Flags().BoolVar(&opts.annotate, "annotate", false, "append the disassembly to listing lines")
	cmd.Flags().BoolVar(&opts.symbols, "symbols", false, "dump the symbol table to stderr")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	return cmd
}

func main() {
	flag.Set("logtostderr", "true")
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		glog.Flush()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
