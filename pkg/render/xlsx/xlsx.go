// Package xlsx writes a resolved table grid as a spreadsheet.
//
// Each cell's text is written at its anchor. Cells covering more than one
// position become merged ranges, so spreadsheet applications show the same
// shape as the text renderer. Empty positions are left blank.
//
//	data, err := xlsx.Render(g, render.Labels{}, xlsx.WithSheetName("Report"))
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/grid"
	"github.com/matzehuels/tablespan/pkg/render"
)

// DefaultSheetName is the name of the single worksheet written by Render.
const DefaultSheetName = "Sheet1"

// Option configures Render.
type Option func(*config)

type config struct {
	sheet string
}

// WithSheetName names the worksheet.
func WithSheetName(name string) Option { return func(c *config) { c.sheet = name } }

// Render writes g to an xlsx workbook and returns its bytes.
func Render(g *grid.Grid, content render.ContentLookup, opts ...Option) ([]byte, error) {
	cfg := config{sheet: DefaultSheetName}
	for _, opt := range opts {
		opt(&cfg)
	}

	f := excelize.NewFile()
	defer f.Close()

	if cfg.sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, cfg.sheet); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidOption, err, "sheet name %q", cfg.sheet)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	for _, c := range g.Cells() {
		text, err := render.Lookup(content, c)
		if err != nil {
			return nil, err
		}

		start, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", c.Label, err)
		}
		end, err := excelize.CoordinatesToCellName(c.EndCol(), c.EndRow())
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", c.Label, err)
		}

		if err := f.SetCellValue(cfg.sheet, start, text); err != nil {
			return nil, fmt.Errorf("write %s: %w", start, err)
		}
		if start != end {
			if err := f.MergeCell(cfg.sheet, start, end); err != nil {
				return nil, fmt.Errorf("merge %s:%s: %w", start, end, err)
			}
		}
		if err := f.SetCellStyle(cfg.sheet, start, end, style); err != nil {
			return nil, fmt.Errorf("style %s:%s: %w", start, end, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
