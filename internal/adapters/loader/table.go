// Package loader reads rating tables and JSON rating documents into
// alpha datasets of model.Cell.
package loader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
)

// Orientation describes what a table row holds.
type Orientation string

// Supported orientations.
const (
	// CodersAsRows: one row per coder, one column per item.
	CodersAsRows Orientation = "coders"
	// ItemsAsRows: one row per item, one column per coder.
	ItemsAsRows Orientation = "items"
)

// ParseOrientation validates an orientation name.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case CodersAsRows, ItemsAsRows:
		return o, nil
	default:
		return "", fmt.Errorf("%w: orientation %q", ErrInvalidOption, s)
	}
}

// ReadTable reads a delimited table of raw ratings. Empty cells become Null.
// Blank lines and lines starting with '#' are skipped.
func ReadTable(r io.Reader, opts ...Option) (alpha.Dataset[model.Cell], error) {
	o := newOptions(opts)
	if _, err := ParseOrientation(string(o.orientation)); err != nil {
		return nil, err
	}

	rows, err := readRows(r, o.delimiter)
	if err != nil {
		return nil, err
	}

	var header []string
	if o.header && len(rows) > 0 {
		header, rows = rows[0], rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	if o.orientation == ItemsAsRows {
		return byItem(rows), nil
	}
	if header != nil {
		return byLabel(header, rows)
	}
	return byPosition(rows), nil
}

func readRows(r io.Reader, delim rune) ([][]string, error) {
	if delim == 0 {
		return readFields(r)
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
		}
		rows = append(rows, rec)
	}
}

func readFields(r io.Reader) ([][]string, error) {
	var rows [][]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	return rows, nil
}

func cell(s string) model.Cell {
	if s = strings.TrimSpace(s); s == "" {
		return model.Null
	}
	return model.Text(s)
}

func byPosition(rows [][]string) alpha.Dataset[model.Cell] {
	data := make(alpha.Dataset[model.Cell], len(rows))
	for i, row := range rows {
		g := make(alpha.PositionalGroup[model.Cell], len(row))
		for j, s := range row {
			g[j] = cell(s)
		}
		data[i] = g
	}
	return data
}

func byLabel(header []string, rows [][]string) (alpha.Dataset[model.Cell], error) {
	seen := make(map[alpha.ItemID]bool, len(header))
	for i, label := range header {
		id := alpha.ItemID(strings.TrimSpace(label))
		if id == "" {
			return nil, fmt.Errorf("%w: header column %d is empty", ErrMalformedTable, i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate item %q in header", ErrMalformedTable, id)
		}
		seen[id] = true
	}

	data := make(alpha.Dataset[model.Cell], len(rows))
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrMalformedTable, i+1, len(row), len(header))
		}
		g := make(alpha.KeyedGroup[model.Cell], len(row))
		for j, s := range row {
			g[alpha.ItemID(strings.TrimSpace(header[j]))] = cell(s)
		}
		data[i] = g
	}
	return data, nil
}

// byItem transposes an item-per-row table. Short rows leave the trailing
// coders Null for that item.
func byItem(rows [][]string) alpha.Dataset[model.Cell] {
	coders := 0
	for _, row := range rows {
		coders = max(coders, len(row))
	}

	data := make(alpha.Dataset[model.Cell], coders)
	for c := range data {
		g := make(alpha.PositionalGroup[model.Cell], len(rows))
		for i, row := range rows {
			if c < len(row) {
				g[i] = cell(row[c])
			}
		}
		data[c] = g
	}
	return data
}
