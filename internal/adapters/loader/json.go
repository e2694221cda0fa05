package loader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/okian/kalpha/internal/domain/alpha"
	"github.com/okian/kalpha/internal/domain/model"
)

// Document is the JSON form of a dataset:
//
//	{"coders": [{"A": 1, "B": "2"}, [1, 2, null]]}
//
// Objects become keyed groups and arrays positional groups; a null coder is
// skipped.
type Document struct {
	Coders []json.RawMessage `json:"coders"`
}

// ReadJSON reads a Document, or a bare array of coders, from r.
func ReadJSON(r io.Reader) (alpha.Dataset[model.Cell], error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyInput
	}

	var coders []json.RawMessage
	if body[0] == '[' {
		err = json.Unmarshal(body, &coders)
	} else {
		var doc Document
		err = json.Unmarshal(body, &doc)
		coders = doc.Coders
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	return DecodeCoders(coders)
}

// DecodeCoders turns raw coder entries into a dataset.
func DecodeCoders(coders []json.RawMessage) (alpha.Dataset[model.Cell], error) {
	if len(coders) == 0 {
		return nil, ErrEmptyInput
	}

	data := make(alpha.Dataset[model.Cell], 0, len(coders))
	for i, raw := range coders {
		raw = bytes.TrimSpace(raw)
		switch {
		case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
			data = append(data, nil)
		case raw[0] == '{':
			var g map[alpha.ItemID]model.Cell
			if err := json.Unmarshal(raw, &g); err != nil {
				return nil, fmt.Errorf("%w: coder %d: %w", ErrMalformedJSON, i, err)
			}
			data = append(data, alpha.KeyedGroup[model.Cell](g))
		case raw[0] == '[':
			var g []model.Cell
			if err := json.Unmarshal(raw, &g); err != nil {
				return nil, fmt.Errorf("%w: coder %d: %w", ErrMalformedJSON, i, err)
			}
			data = append(data, alpha.PositionalGroup[model.Cell](g))
		default:
			return nil, fmt.Errorf("%w: coder %d must be an object or an array", ErrMalformedJSON, i)
		}
	}
	return data, nil
}
