package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/pipeline"
	"github.com/matzehuels/tablespan/pkg/render"
	"github.com/matzehuels/tablespan/pkg/render/text"
)

var (
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	previewErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// previewCommand creates the preview command, an interactive viewer for the
// rendered text table.
func (c *CLI) previewCommand() *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "preview [document]",
		Short: "Interactively preview a rendered table",
		Long: `Preview renders a table in the terminal and lets you try border styles,
alignments and padding.

Keys: ↑/↓ or j/k scroll, b border, a alignment, +/- padding, q quit.`,
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

			opts := pipeline.Options{Formats: []string{pipeline.FormatText}}
			c.config.Render.apply(&opts, cmd.Flags())
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			m := newPreviewModel(g, opts.Lookup(in), opts)
			p := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	input.register(cmd)
	return cmd
}

// previewModel is the bubbletea model behind the preview command. Every
// option change re-renders the table; scrolling only moves the viewport.
type previewModel struct {
	grid    *grid.Grid
	content render.ContentLookup

	border  string
	align   string
	padding int
	minW    int

	lines  []string
	err    error
	offset int
	height int
}

func newPreviewModel(g *grid.Grid, content render.ContentLookup, opts pipeline.Options) previewModel {
	m := previewModel{
		grid:    g,
		content: content,
		border:  opts.Border,
		align:   opts.Align,
		padding: text.DefaultPadding,
		minW:    text.DefaultMinWidth,
		height:  20,
	}
	if opts.MinWidth != nil {
		m.minW = *opts.MinWidth
	}
	if opts.Padding != nil {
		m.padding = *opts.Padding
	}
	return m.rerender()
}

func (m previewModel) rerender() previewModel {
	out, err := text.Render(m.grid, m.content,
		text.WithBorder(m.border),
		text.WithAlign(m.align),
		text.WithMinWidth(m.minW),
		text.WithPadding(m.padding),
	)
	m.err = err
	m.lines = strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	return m.clamp()
}

func (m previewModel) clamp() previewModel {
	if limit := len(m.lines) - m.height; m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.offset--
			return m.clamp(), nil
		case "down", "j":
			m.offset++
			return m.clamp(), nil
		case "b":
			m.border = cycle(text.BorderNames(), m.border)
			return m.rerender(), nil
		case "a":
			m.align = cycle([]string{text.AlignLeft, text.AlignCenter, text.AlignRight}, m.align)
			return m.rerender(), nil
		case "+", "=":
			m.padding++
			return m.rerender(), nil
		case "-":
			if m.padding > 0 {
				m.padding--
			}
			return m.rerender(), nil
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 3
		if m.height < 3 {
			m.height = 3
		}
		return m.clamp(), nil
	}
	return m, nil
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%d x %d", m.grid.Rows(), m.grid.Cols())))
	b.WriteString("  ")
	b.WriteString(previewStatusStyle.Render(fmt.Sprintf("border=%s align=%s padding=%d", m.border, m.align, m.padding)))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(previewErrorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else {
		end := m.offset + m.height
		if end > len(m.lines) {
			end = len(m.lines)
		}
		for _, line := range m.lines[m.offset:end] {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(StyleDim.Render("↑/↓ scroll  b border  a align  +/- padding  q quit"))
	return b.String()
}

// cycle returns the element after cur in values, wrapping around.
func cycle(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
