package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var allocCmd = &cobra.Command{
	Use:   "alloc <size>",
	Short: "Allocate a block and print its address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := parseSize(args[0])
		if err != nil {
			return err
		}

		a, err := newAllocator()
		if err != nil {
			return err
		}

		addr, err := a.Allocate(size)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "0x%x\n", addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(allocCmd)
}
