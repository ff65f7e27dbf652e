package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contagion",
		Short: "SEIR epidemic simulation over a synthetic contact network",
		Long: `contagion grows a scale-free contact network with community structure
and spreads an SEIR epidemic across it one day at a time.

Runs are reproducible: pass --seed (or set run.seed in the config file)
to replay the same network and the same outbreak.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.contagion/config.yaml)")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Random seed for a reproducible run")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newGenerateCmd(),
		newGraphCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}
