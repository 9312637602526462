package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

// inspectCommand creates the inspect command, which lists every resolved
// cell with its position and extent.
func (c *CLI) inspectCommand() *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "inspect [document]",
		Short: "List the resolved cells of a table",
		Example: `  tablespan inspect report.json
  tablespan inspect --table '[["A", "B"], ["C"]]' --spans '{"A": [1, 2]}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _, err := loadInput(args, input, c.In)
			if err != nil {
				return err
			}
			g, err := pipeline.Resolve(in)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("resolved grid", "rows", g.Rows(), "cols", g.Cols())
			return writeCells(c.Out, g, in.Content)
		},
	}
	input.register(cmd)
	return cmd
}

var (
	inspectHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	inspectCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	inspectSpanStyle   = inspectCellStyle.Foreground(colorCyan)
)

// writeCells prints the grid dimensions and one table row per cell in
// reading order. Cells spanning more than one slot are highlighted.
func writeCells(w io.Writer, g *grid.Grid, content map[string]string) error {
	cells := g.Cells()
	rows := make([][]string, 0, len(cells))
	for _, cell := range cells {
		rows = append(rows, []string{
			cell.Label,
			strconv.Itoa(cell.Row),
			strconv.Itoa(cell.Col),
			strconv.Itoa(cell.ColSpan),
			strconv.Itoa(cell.RowSpan),
			content[cell.Label],
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Label", "Row", "Col", "Colspan", "Rowspan", "Content").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return inspectHeaderStyle.Padding(0, 1)
			}
			if row < len(cells) && (cells[row].ColSpan > 1 || cells[row].RowSpan > 1) {
				return inspectSpanStyle
			}
			return inspectCellStyle
		})

	if _, err := fmt.Fprintf(w, "%d rows x %d cols, %d cells\n", g.Rows(), g.Cols(), len(cells)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
