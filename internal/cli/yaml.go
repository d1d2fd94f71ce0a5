package cli

import (
	"math/big"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/viant/jsonio/element"
)

func (c *CLI) yamlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "yaml [file]",
		Short: "Convert a document to YAML",
		Long: `Converts a document to YAML. Objects reachable more than once are written in
full at their first occurrence with an @id entry, later occurrences become @ref.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := c.readTree(args)
			if err != nil {
				return err
			}
			output, err := toYAML(tree)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(output)
			return err
		},
	}
	return cmd
}

// toYAML encodes the generic tree, shared elements are numbered in visit order.
func toYAML(tree interface{}) ([]byte, error) {
	enc := &yamlEncoder{counts: map[*element.Element]int{}, ids: map[*element.Element]int{}}
	enc.count(tree)
	return yaml.Marshal(enc.convert(tree))
}

type yamlEncoder struct {
	counts map[*element.Element]int
	ids    map[*element.Element]int
	nextID int
}

func (y *yamlEncoder) count(value interface{}) {
	switch actual := value.(type) {
	case *element.Element:
		if actual == nil {
			return
		}
		y.counts[actual]++
		if y.counts[actual] > 1 {
			return
		}
		actual.Range(func(_ string, item interface{}) bool {
			y.count(item)
			return true
		})
	case []interface{}:
		for _, item := range actual {
			y.count(item)
		}
	}
}

func (y *yamlEncoder) convert(value interface{}) interface{} {
	switch actual := value.(type) {
	case *element.Element:
		if actual == nil {
			return nil
		}
		var ret yaml.MapSlice
		if y.counts[actual] > 1 {
			if id, ok := y.ids[actual]; ok {
				return yaml.MapSlice{{Key: element.KeyRef, Value: id}}
			}
			y.nextID++
			y.ids[actual] = y.nextID
			ret = append(ret, yaml.MapItem{Key: element.KeyID, Value: y.nextID})
		}
		if actual.Type != "" {
			ret = append(ret, yaml.MapItem{Key: element.KeyType, Value: actual.Type})
		}
		actual.Range(func(key string, item interface{}) bool {
			ret = append(ret, yaml.MapItem{Key: key, Value: y.convert(item)})
			return true
		})
		if ret == nil {
			return yaml.MapSlice{}
		}
		return ret
	case []interface{}:
		ret := make([]interface{}, len(actual))
		for i, item := range actual {
			ret[i] = y.convert(item)
		}
		return ret
	case *big.Int:
		return actual.String()
	case *big.Float:
		return actual.Text('g', -1)
	}
	if element.IsEmpty(value) {
		return yaml.MapSlice{}
	}
	return value
}
