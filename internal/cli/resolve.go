package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tsio "github.com/matzehuels/tablespan/pkg/io"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

// resolveCommand creates the resolve command, which prints the layout JSON
// of a span map and a logical table.
func (c *CLI) resolveCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "resolve SPANINFO TABLESPEC",
		Short: "Print the JSON layout of a table",
		Long: `Resolve a span map and a logical table into a JSON layout.

SPANINFO is a JSON object mapping cell labels to [colspan, rowspan]:

  {"A": [2, 1], "E": [3, 3]}

It is an error to pass values below 1.

TABLESPEC is a two-dimensional JSON array of cell labels, one inner array
per row, listing only the labels that start in that row:

  [["A", "B"], ["C", "D"]]

It is an error to pass non-string values, including nulls.

Either argument may be "@file" to read it from a file or "-" for stdin,
but not both from stdin.
The layout has one array per row with the label at each cell's top-left
position and null everywhere else.`,
		Example: `  tablespan resolve '{"A": [2, 1]}' '[["A", "B"], ["C", "D"]]'
  [["A",null,"B"],["C","D",null]]`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkStdin(args...); err != nil {
				return err
			}
			spans, err := tsio.ReadArg(args[0], c.In)
			if err != nil {
				return err
			}
			table, err := tsio.ReadArg(args[1], c.In)
			if err != nil {
				return err
			}

			layout, err := pipeline.ResolveJSON(spans, table)
			if err != nil {
				return err
			}
			layout = append(layout, '\n')

			if output == "" {
				_, err = c.Out.Write(layout)
				return err
			}
			if err := os.WriteFile(output, layout, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			loggerFromContext(cmd.Context()).Infof("Generated %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout to a file instead of stdout")
	return cmd
}
