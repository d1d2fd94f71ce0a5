package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/jsonio"
	"github.com/viant/jsonio/writer"
)

func (c *CLI) fmtCommand() *cobra.Command {
	var (
		compact   bool
		shortKeys bool
		showType  string
	)
	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Re-encode a document keeping identity and type metadata",
		Long: `Reads a document into the generic tree and writes it back. Identifiers are
renumbered in document order and only values that are referenced keep an @id.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			data, err := c.readInput(args)
			if err != nil {
				return err
			}
			opts, err := c.writerOptions()
			if err != nil {
				return err
			}
			opts = append(opts, writer.WithPrettyPrint(!compact))
			if cmd.Flags().Changed("short-keys") {
				opts = append(opts, writer.WithShortMetaKeys(shortKeys))
			}
			if cmd.Flags().Changed("show-type") {
				policy, ok := writer.ParseShowType(showType)
				if !ok {
					return fmt.Errorf("invalid --show-type: %v, expected auto, always or never", showType)
				}
				opts = append(opts, writer.WithShowType(policy))
			}
			output, err := jsonio.Format(data, opts...)
			if err != nil {
				return err
			}
			logger.Debug("formatted document", "in", len(data), "out", len(output))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
			return err
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "write without indentation")
	cmd.Flags().BoolVar(&shortKeys, "short-keys", false, "use @i, @r, @t, @k and @e meta keys")
	cmd.Flags().StringVar(&showType, "show-type", "auto", "type metadata policy: auto, always or never")
	return cmd
}
