package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/wire"
)

var wireCmd = &cobra.Command{
	Use:   "wire",
	Short: "Inspect the QIR wire encoding",
}

var wireEncodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Translate a host file and write its QIR term as msgpack to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runWireEncode,
}

var wireDecodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Parse a msgpack-encoded QIR term (from a file, or stdin) and print its tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWireDecode,
}

func init() {
	wireCmd.AddCommand(wireEncodeCmd)
	wireCmd.AddCommand(wireDecodeCmd)
}

func runWireEncode(cmd *cobra.Command, args []string) error {
	path := args[0]
	prog, bag, fs, err := compileFile(path)
	if bag != nil && (bag.HasErrors() || bag.HasWarnings()) {
		colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
		printDiagnostics(os.Stderr, bag, fs, colorEnabled(colorFlag, os.Stderr))
	}
	if err != nil {
		return err
	}

	expr, err := translateDefault(prog)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	return wire.Encode(cmd.OutOrStdout(), expr)
}

func runWireDecode(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}
	expr, err := wire.Decode(r)
	if err != nil {
		return fmt.Errorf("wire: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), qir.Sprint(expr))
	return nil
}
