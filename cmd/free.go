package cmd

import (
	"github.com/spf13/cobra"
)

var freeCmd = &cobra.Command{
	Use:   "free <addr>",
	Short: "Free a block previously returned by alloc",
	Long: `free operates against a freshly constructed allocator, same as alloc:
addresses from one invocation of this binary are not known to another,
so a standalone free will typically fail with an invalid-address error
the way freeing a never-allocated address does against any buddy
allocator. Use bench to drive allocate/free pairs against one
long-lived arena.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}

		a, err := newAllocator()
		if err != nil {
			return err
		}

		return a.Free(addr)
	},
}

func init() {
	rootCmd.AddCommand(freeCmd)
}
