package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/liautaud/boldr/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "qirc",
	Short: "QIR translator toolchain",
	Long:  `qirc compiles host-language functions into the Query Intermediate Representation and exercises it end to end.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(wireCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "", "path to qir.toml (accepted but not read by any subcommand)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
