package cli

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	tsio "github.com/matzehuels/tablespan/pkg/io"
	"github.com/matzehuels/tablespan/pkg/pipeline"
)

// defaultBase names output files when the table did not come from a file.
const defaultBase = "table"

// inputFlags select the table when no document file is given. Each value
// is inline JSON, "@path" or "-" for stdin.
type inputFlags struct {
	spans   string
	table   string
	content string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.spans, "spans", "", `span map JSON, "@file" or "-" (instead of a document)`)
	cmd.Flags().StringVar(&f.table, "table", "", `logical table JSON, "@file" or "-" (instead of a document)`)
	cmd.Flags().StringVar(&f.content, "content", "", `content map JSON, "@file" or "-"`)
}

// loadInput reads the table named by a document argument or by the input
// flags. It returns the input and the base path for derived output files.
func loadInput(args []string, f inputFlags, stdin io.Reader) (pipeline.Input, string, error) {
	if err := checkStdin(append([]string{f.spans, f.table, f.content}, args...)...); err != nil {
		return pipeline.Input{}, "", err
	}
	if len(args) > 0 {
		if f.spans != "" || f.table != "" {
			return pipeline.Input{}, "", errs.New(errs.ErrCodeInvalidOption, "give either a document or --spans/--table, not both")
		}
		return loadDocument(args[0], f, stdin)
	}
	if f.table == "" {
		return pipeline.Input{}, "", errs.New(errs.ErrCodeInvalidOption, "no table: pass a document file or --table")
	}

	var in pipeline.Input
	r, err := tsio.OpenArg(f.table, stdin)
	if err != nil {
		return in, "", err
	}
	if in.Table, err = tsio.ReadTable(r); err != nil {
		return in, "", err
	}
	if f.spans != "" {
		if r, err = tsio.OpenArg(f.spans, stdin); err != nil {
			return in, "", err
		}
		if in.Spans, err = tsio.ReadSpanMap(r); err != nil {
			return in, "", err
		}
	}
	if err := loadContent(&in, f.content, stdin); err != nil {
		return in, "", err
	}
	return in, baseFromArg(f.table), nil
}

func loadDocument(path string, f inputFlags, stdin io.Reader) (pipeline.Input, string, error) {
	arg := path
	if path != "-" {
		arg = "@" + path
	}
	r, err := tsio.OpenArg(arg, stdin)
	if err != nil {
		return pipeline.Input{}, "", err
	}
	doc, err := tsio.ReadDocument(r)
	if err != nil {
		return pipeline.Input{}, "", err
	}
	in := pipeline.Input{Spans: doc.Spans, Table: doc.Table, Content: doc.Content}
	if err := loadContent(&in, f.content, stdin); err != nil {
		return in, "", err
	}
	if path == "-" {
		return in, defaultBase, nil
	}
	return in, strings.TrimSuffix(path, filepath.Ext(path)), nil
}

// loadContent merges a --content map over the content already in in.
func loadContent(in *pipeline.Input, arg string, stdin io.Reader) error {
	if arg == "" {
		return nil
	}
	data, err := tsio.ReadArg(arg, stdin)
	if err != nil {
		return err
	}
	content, err := tsio.ParseContent(data)
	if err != nil {
		return err
	}
	if in.Content == nil {
		in.Content = make(map[string]string, len(content))
	}
	for k, v := range content {
		in.Content[k] = v
	}
	return nil
}

// checkStdin rejects argument lists that name stdin ("-") more than once.
// The first read would drain it and leave nothing for the others.
func checkStdin(args ...string) error {
	n := 0
	for _, arg := range args {
		if arg == "-" {
			n++
		}
	}
	if n > 1 {
		return errs.New(errs.ErrCodeInvalidOption, `stdin ("-") can supply only one input, got %d`, n)
	}
	return nil
}

func baseFromArg(arg string) string {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		return strings.TrimSuffix(path, filepath.Ext(path))
	}
	return defaultBase
}
