// ttt plays Tic-Tac-Toe against the computer in the terminal.
//
// Usage:
//
//	ttt play        - Play against the computer
//	ttt simulate    - Let two computer players play each other
//
// Global flags:
//
//	--verbose       - Log every computer move
//	--db <path>     - Record results in a stats database (off by default)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagVerbose bool
	flagDBPath  string

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "ttt"})
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ttt",
	Short: "Tic-Tac-Toe against the computer",
	Long: `ttt plays Tic-Tac-Toe in the terminal against a computer opponent
with three difficulty levels: easy, medium and hard.

Examples:
  ttt play --difficulty hard
  ttt play --mark O --think 1s
  ttt simulate --x medium --o hard --games 500`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log every computer move")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to a stats database to record results in")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
}
