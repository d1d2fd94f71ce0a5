// Package cli implements the jsonio command-line interface.
//
// Commands read a JSON document from a file argument or standard input,
// resolve it into the generic element tree and write it back out:
//   - fmt: re-encode with indentation, short meta keys or a type policy
//   - get: print the value a dotted path selects
//   - yaml: convert to YAML, shared objects become @ref entries
//   - dump: print the resolved tree structure for debugging
//
// Reader and writer settings can be loaded from a TOML file with --config.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/viant/jsonio"
	"github.com/viant/jsonio/reader"
	"github.com/viant/jsonio/writer"
)

const appName = "jsonio"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
	logLevel   string
	config     *jsonio.Config
	stdin      io.Reader
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), config: &jsonio.Config{}, stdin: os.Stdin}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "jsonio reformats and inspects identity preserving JSON",
		Long:         `jsonio reads JSON documents that carry @id, @ref and @type metadata, keeps shared references intact and writes them back as JSON, YAML or a debug dump.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("log-level") {
				level, err := log.ParseLevel(c.logLevel)
				if err != nil {
					return err
				}
				c.SetLogLevel(level)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML file with reader and writer settings")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.yamlCommand())
	root.AddCommand(c.dumpCommand())
	return root
}

func (c *CLI) loadConfig() error {
	if c.configPath == "" {
		return nil
	}
	config, err := jsonio.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", c.configPath)
	c.config = config
	return nil
}

func (c *CLI) readerOptions() ([]reader.Option, error) {
	return c.config.ReaderOptions(c.Logger)
}

func (c *CLI) writerOptions() ([]writer.Option, error) {
	return c.config.WriterOptions(c.Logger)
}

// readInput reads the file named by the first argument, standard input when absent or "-".
func (c *CLI) readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(args[0])
}

// readTree decodes the input into the generic element tree.
func (c *CLI) readTree(args []string) (interface{}, error) {
	data, err := c.readInput(args)
	if err != nil {
		return nil, err
	}
	opts, err := c.readerOptions()
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	tree, err := jsonio.ToMaps(data, append(opts, reader.WithFailOnUnknownType(false))...)
	if err != nil {
		return nil, err
	}
	prog.done("resolved document")
	return tree, nil
}
