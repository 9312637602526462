package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	errs "github.com/matzehuels/tablespan/pkg/errors"
	"github.com/matzehuels/tablespan/pkg/grid"
)

// Document bundles a span map, a logical table and optional display text.
type Document struct {
	Spans   grid.SpanMap      `json:"spans"`
	Table   grid.LogicalTable `json:"table"`
	Content map[string]string `json:"content,omitempty"`
}

// UnmarshalJSON decodes a document, validating each part with the same
// rules as [ParseSpanMap], [ParseTable] and [ParseContent].
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Spans   json.RawMessage `json:"spans"`
		Table   json.RawMessage `json:"table"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return errs.Wrap(errs.ErrCodeMalformedInput, err, "document must be a JSON object")
	}
	if raw.Table == nil {
		return errs.New(errs.ErrCodeMalformedInput, "document has no \"table\"")
	}

	var out Document
	var err error
	if raw.Spans != nil {
		if out.Spans, err = ParseSpanMap(raw.Spans); err != nil {
			return err
		}
	}
	if out.Table, err = ParseTable(raw.Table); err != nil {
		return err
	}
	if raw.Content != nil {
		if out.Content, err = ParseContent(raw.Content); err != nil {
			return err
		}
	}
	*d = out
	return nil
}

// ParseSpanMap decodes a span map of the form {"label": [colspan, rowspan]}.
// A JSON null decodes to an empty map.
func ParseSpanMap(data []byte) (grid.SpanMap, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedInput, err, "span map must be a JSON object")
	}

	labels := make([]string, 0, len(raw))
	for label := range raw {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	spans := make(grid.SpanMap, len(raw))
	for _, label := range labels {
		var pair []int
		if err := json.Unmarshal(raw[label], &pair); err != nil || len(pair) != 2 {
			return nil, errs.New(errs.ErrCodeMalformedInput,
				"span for label %q must be [colspan, rowspan], got %s", label, compact(raw[label]))
		}
		spans[label] = grid.Span{Cols: pair[0], Rows: pair[1]}
	}
	return spans, nil
}

// ParseTable decodes a logical table: an array of arrays of string labels.
func ParseTable(data []byte) (grid.LogicalTable, error) {
	var raw [][]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedInput, err, "table must be an array of arrays of strings")
	}
	if raw == nil {
		return nil, errs.New(errs.ErrCodeMalformedInput, "table must be an array, got null")
	}

	table := make(grid.LogicalTable, len(raw))
	for r, row := range raw {
		if row == nil {
			return nil, errs.New(errs.ErrCodeMalformedInput, "row %d must be an array, got null", r)
		}
		table[r] = make([]grid.Label, len(row))
		for c, label := range row {
			if label == nil {
				return nil, errs.New(errs.ErrCodeMalformedInput, "row %d, entry %d: label must be a string, got null", r, c)
			}
			table[r][c] = *label
		}
	}
	return table, nil
}

// ParseContent decodes a {"label": "display text"} object.
func ParseContent(data []byte) (map[string]string, error) {
	var content map[string]string
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedInput, err, "content must be an object of strings")
	}
	return content, nil
}

// ReadSpanMap decodes a span map from r. See [ParseSpanMap].
func ReadSpanMap(r io.Reader) (grid.SpanMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read span map: %w", err)
	}
	return ParseSpanMap(data)
}

// ReadTable decodes a logical table from r. See [ParseTable].
func ReadTable(r io.Reader) (grid.LogicalTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return ParseTable(data)
}

// ReadDocument decodes a [Document] from r.
//
// ReadDocument does not close r.
func ReadDocument(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportDocument reads a JSON document file at path.
func ImportDocument(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ReadDocument(bytes.NewReader(data))
}

// OpenArg returns a reader over the input named by a command-line argument:
// the file when arg starts with "@", stdin for "-", and the argument itself
// as inline JSON otherwise. Stdin can be consumed only once, so callers
// must not pass "-" for more than one argument.
func OpenArg(arg string, stdin io.Reader) (io.Reader, error) {
	switch {
	case arg == "-":
		return stdin, nil
	case strings.HasPrefix(arg, "@"):
		data, err := readFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	default:
		return strings.NewReader(arg), nil
	}
}

// ReadArg returns the bytes named by a command-line argument. See
// [OpenArg].
func ReadArg(arg string, stdin io.Reader) ([]byte, error) {
	r, err := OpenArg(arg, stdin)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return data, nil
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
