package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the per-order free-block counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newAllocator()
		if err != nil {
			return err
		}
		return a.Dump(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
