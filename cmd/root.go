// Package cmd wires the allocator into a Cobra command tree. There is
// no wire protocol and no persisted state: each one-shot command
// builds a fresh *allocator.Allocator from flags, and only the
// long-running bench/serve commands keep one alive for the life of
// the process.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnavickas/buddyalloc/logging"
)

var (
	flagMinOrder int
	flagMaxOrder int
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "buddyalloc",
	Short: "A binary buddy allocator over a fixed virtual arena",
	Long: `buddyalloc drives a binary buddy allocator: requests are serviced by
locating or splitting the smallest power-of-two block that satisfies
them, and frees coalesce each block with its buddy until coalescence
is no longer possible.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagMinOrder, "min-order", 12, "minimum block order (page size = 2^min-order bytes)")
	rootCmd.PersistentFlags().IntVar(&flagMaxOrder, "max-order", 20, "maximum block order (arena size = 2^max-order bytes)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "abort on a detected double free and enable debug logging")
}

// Execute runs the command tree; main.go's only job is to call this.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *logging.Logger {
	if flagDebug {
		return logging.New(true)
	}
	return logging.Nop()
}
