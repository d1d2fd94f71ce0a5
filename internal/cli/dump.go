package cli

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func (c *CLI) dumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Print the resolved element tree",
		Long:  `Prints the generic tree the reader builds, including element types and identities. Cycles are cut at the first repeated element.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := c.readTree(args)
			if err != nil {
				return err
			}
			dumpConfig.Fdump(cmd.OutOrStdout(), tree)
			return nil
		},
	}
	return cmd
}
