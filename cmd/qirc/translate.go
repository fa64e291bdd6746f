package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liautaud/boldr/internal/diag"
	"github.com/liautaud/boldr/internal/pretty"
	"github.com/liautaud/boldr/internal/qir"
	"github.com/liautaud/boldr/internal/translate"
	"github.com/liautaud/boldr/internal/wire"
)

func diagReporterFor(bag *diag.Bag) diag.Reporter {
	return diag.BagReporter{Bag: bag}
}

var translateCmd = &cobra.Command{
	Use:   "translate [flags] <file>",
	Short: "Translate a host function into a QIR expression",
	Long:  `Translate compiles a host source file's function and runs it through the Symbolic Interpreter, printing the resulting QIR term.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTranslate,
}

func init() {
	translateCmd.Flags().StringSlice("source", nil, "bind a free name to a collection or another host file (name=collection or name=collection:file.qh)")
	translateCmd.Flags().String("format", "tree", "output format (tree|sexpr|wire)")
	translateCmd.Flags().Bool("disassemble", false, "also print the compiled bytecode before translation")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	path := args[0]

	sourceSpecs, err := cmd.Flags().GetStringSlice("source")
	if err != nil {
		return fmt.Errorf("failed to get source flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	disassemble, err := cmd.Flags().GetBool("disassemble")
	if err != nil {
		return fmt.Errorf("failed to get disassemble flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	prog, bag, fs, err := compileFile(path)
	if bag != nil && (bag.HasErrors() || bag.HasWarnings()) {
		printDiagnostics(os.Stderr, bag, fs, colorEnabled(colorFlag, os.Stderr))
	}
	if err != nil {
		return err
	}

	if disassemble {
		fmt.Fprint(cmd.OutOrStdout(), pretty.Disassembly(prog))
		fmt.Fprintln(cmd.OutOrStdout())
	}

	sources, err := parseSources(sourceSpecs)
	if err != nil {
		return err
	}

	expr, err := translate.Report(prog, sources, nil, diagReporterFor(bag))
	if err != nil {
		printDiagnostics(os.Stderr, bag, fs, colorEnabled(colorFlag, os.Stderr))
		return fmt.Errorf("translate: %w", err)
	}

	return renderExpr(cmd, expr, format)
}

func renderExpr(cmd *cobra.Command, expr *qir.Expr, format string) error {
	switch format {
	case "tree":
		fmt.Fprint(cmd.OutOrStdout(), pretty.Tree(expr))
		return nil
	case "sexpr":
		fmt.Fprintln(cmd.OutOrStdout(), qir.Sprint(expr))
		return nil
	case "wire":
		data, err := wire.Marshal(expr)
		if err != nil {
			return fmt.Errorf("wire: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
