package text

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	errs "github.com/matzehuels/tablespan/pkg/errors"
)

// Border names accepted by WithBorder.
const (
	BorderNormal  = "normal"
	BorderRounded = "rounded"
	BorderThick   = "thick"
	BorderDouble  = "double"
	BorderASCII   = "ascii"
	BorderHidden  = "hidden"
)

// Alignment names accepted by WithAlign.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Defaults used when no option overrides them.
const (
	DefaultBorder   = BorderNormal
	DefaultAlign    = AlignLeft
	DefaultMinWidth = 1
	DefaultPadding  = 1
)

var borders = map[string]func() lipgloss.Border{
	BorderNormal:  lipgloss.NormalBorder,
	BorderRounded: lipgloss.RoundedBorder,
	BorderThick:   lipgloss.ThickBorder,
	BorderDouble:  lipgloss.DoubleBorder,
	BorderASCII:   lipgloss.ASCIIBorder,
	BorderHidden:  lipgloss.HiddenBorder,
}

var aligns = map[string]bool{AlignLeft: true, AlignCenter: true, AlignRight: true}

// BorderNames returns the accepted border names in sorted order.
func BorderNames() []string {
	names := make([]string, 0, len(borders))
	for name := range borders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateBorder checks that name is a known border set.
func ValidateBorder(name string) error {
	if _, ok := borders[name]; !ok {
		return errs.New(errs.ErrCodeInvalidBorder,
			"invalid border: %q (must be one of: %s)", name, strings.Join(BorderNames(), ", "))
	}
	return nil
}

// ValidateAlign checks that name is a known alignment.
func ValidateAlign(name string) error {
	if !aligns[name] {
		return errs.New(errs.ErrCodeInvalidAlign,
			"invalid align: %q (must be one of: left, center, right)", name)
	}
	return nil
}

// Option configures Render and Measure.
type Option func(*config)

type config struct {
	border   string
	align    string
	minWidth int
	padding  int
}

// WithBorder selects the border set by name.
func WithBorder(name string) Option { return func(c *config) { c.border = name } }

// WithAlign selects horizontal placement of content lines.
func WithAlign(name string) Option { return func(c *config) { c.align = name } }

// WithMinWidth sets the minimum content width of every column.
func WithMinWidth(n int) Option { return func(c *config) { c.minWidth = n } }

// WithPadding sets the number of spaces on each side of cell content.
func WithPadding(n int) Option { return func(c *config) { c.padding = n } }

func newConfig(opts ...Option) (config, error) {
	c := config{
		border:   DefaultBorder,
		align:    DefaultAlign,
		minWidth: DefaultMinWidth,
		padding:  DefaultPadding,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := ValidateBorder(c.border); err != nil {
		return c, err
	}
	if err := ValidateAlign(c.align); err != nil {
		return c, err
	}
	if c.minWidth < 0 {
		return c, errs.New(errs.ErrCodeInvalidOption, "min width must not be negative, got %d", c.minWidth)
	}
	if c.padding < 0 {
		return c, errs.New(errs.ErrCodeInvalidOption, "padding must not be negative, got %d", c.padding)
	}
	return c, nil
}

// separator is the width taken between two adjacent columns: the padding
// on both sides plus the border glyph.
func (c config) separator() int {
	return 2*c.padding + 1
}
