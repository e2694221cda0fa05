package alpha

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Converter turns a raw rating into the float64 a metric operates on.
type Converter[V comparable] func(V) (float64, error)

// ToFloat is the default Converter. Numeric and boolean kinds convert
// directly; strings are trimmed and parsed with strconv.ParseFloat.
func ToFloat[V comparable](v V) (float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		if err != nil {
			return 0, err
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported rating type %T", v)
	}
}

// CategoryCoder assigns numeric codes to categorical labels in the order they
// are first seen. Use its Convert method with the nominal metric when ratings
// are labels rather than numbers. A CategoryCoder is not safe for concurrent
// use.
type CategoryCoder[V comparable] struct {
	codes map[V]float64
}

// NewCategoryCoder returns an empty coder.
func NewCategoryCoder[V comparable]() *CategoryCoder[V] {
	return &CategoryCoder[V]{codes: make(map[V]float64)}
}

// Convert returns the code for label, registering it if unseen.
func (c *CategoryCoder[V]) Convert(label V) (float64, error) {
	if code, ok := c.codes[label]; ok {
		return code, nil
	}
	code := float64(len(c.codes))
	c.codes[label] = code
	return code, nil
}
