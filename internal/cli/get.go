package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/jsonio"
	"github.com/viant/jsonio/selector"
	"github.com/viant/jsonio/writer"
)

func (c *CLI) getCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <path> [file]",
		Short: "Print the value selected by a dotted path",
		Example: `  jsonio get 'lines[0].sku' order.json
  cat order.json | jsonio get customer.name`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			aSelector, err := selector.New(args[0])
			if err != nil {
				return err
			}
			tree, err := c.readTree(args[1:])
			if err != nil {
				return err
			}
			value, ok := aSelector.Value(tree)
			if !ok {
				return fmt.Errorf("path %v not found", aSelector)
			}
			opts, err := c.writerOptions()
			if err != nil {
				return err
			}
			output, err := jsonio.Marshal(value, append(opts, writer.WithPrettyPrint(true))...)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("selected", "path", aSelector.String())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return err
		},
	}
	return cmd
}
