package model

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Cell is one raw rating as read from a table or a JSON document. The zero
// value is Null: an empty table cell or a JSON null.
type Cell struct {
	Text  string
	Valid bool
}

// Null is the Cell for an absent rating. Always list it as a missing value.
var Null = Cell{}

// Text returns a valid Cell holding s.
func Text(s string) Cell { return Cell{Text: s, Valid: true} }

// Missing turns missing markers such as "*" into Cells, with Null first.
func Missing(markers ...string) []Cell {
	out := make([]Cell, 0, len(markers)+1)
	out = append(out, Null)
	for _, m := range markers {
		out = append(out, Text(m))
	}
	return out
}

// Float parses the cell as a number.
func (c Cell) Float() (float64, error) {
	if !c.Valid {
		return 0, errors.New("null rating")
	}
	return strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
}

// ConvertCell is the numeric converter for Cell datasets.
func ConvertCell(c Cell) (float64, error) { return c.Float() }

// String implements fmt.Stringer.
func (c Cell) String() string {
	if !c.Valid {
		return "null"
	}
	return c.Text
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return fmt.Errorf("%w: empty value", ErrInvalidRating)
	case bytes.Equal(b, []byte("null")):
		*c = Null
	case bytes.Equal(b, []byte("true")):
		*c = Text("1")
	case bytes.Equal(b, []byte("false")):
		*c = Text("0")
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRating, err)
		}
		*c = Text(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		*c = Text(string(b))
	default:
		return fmt.Errorf("%w: unsupported rating %s", ErrInvalidRating, b)
	}
	return nil
}

// MarshalJSON writes numbers unquoted when they parse, strings otherwise.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(c.Text, 64); err == nil && json.Valid([]byte(c.Text)) {
		return []byte(c.Text), nil
	}
	return json.Marshal(c.Text)
}
