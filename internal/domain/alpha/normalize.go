package alpha

import (
	"fmt"
	"reflect"
	"slices"
)

// Units is the item ratings mapping: for every item, the converted ratings
// of the coders who rated it, in coder order. Items keep first-seen order.
type Units struct {
	order   []ItemID
	ratings map[ItemID][]float64
}

func newUnits() Units {
	return Units{ratings: make(map[ItemID][]float64)}
}

func (u *Units) add(item ItemID, v float64) {
	vs, ok := u.ratings[item]
	if !ok {
		u.order = append(u.order, item)
	}
	u.ratings[item] = append(vs, v)
}

// Ratings returns the converted ratings recorded for item.
func (u Units) Ratings(item ItemID) []float64 { return slices.Clone(u.ratings[item]) }

// Len returns the number of items.
func (u Units) Len() int { return len(u.order) }

// Values returns the total number of ratings across all items.
func (u Units) Values() int {
	n := 0
	for _, vs := range u.ratings {
		n += len(vs)
	}
	return n
}

// Pairable keeps only the items rated by at least two coders; the rest carry
// no information about agreement.
func (u Units) Pairable() Units {
	out := newUnits()
	for _, item := range u.order {
		if vs := u.ratings[item]; len(vs) > 1 {
			out.order = append(out.order, item)
			out.ratings[item] = vs
		}
	}
	return out
}

// groups returns the rating lists in item order.
func (u Units) groups() [][]float64 {
	gs := make([][]float64, len(u.order))
	for i, item := range u.order {
		gs[i] = u.ratings[item]
	}
	return gs
}

// Normalize folds a dataset into Units. Values listed in missing, and values
// not equal to themselves (NaN), are skipped; everything else goes through
// conv. A conversion failure aborts with ErrConversion.
func Normalize[V comparable](data Dataset[V], conv Converter[V], missing []V) (Units, error) {
	units := newUnits()
	dynamic := holdsInterface(reflect.TypeFor[V]())
	for coder, group := range data {
		if err := addGroup(&units, coder, group, conv, missing, dynamic); err != nil {
			return Units{}, err
		}
	}
	return units, nil
}

func addGroup[V comparable](u *Units, coder int, group RatingGroup[V], conv Converter[V], missing []V, dynamic bool) error {
	if group == nil {
		return nil
	}
	for item, raw := range group.Ratings() {
		// == on an interface holding a slice, map or func panics.
		if dynamic && !comparableValue(raw) {
			return fmt.Errorf("%w: coder %d item %q: uncomparable rating %T", ErrConversion, coder, item, raw)
		}
		if isMissing(raw, missing) {
			continue
		}
		v, err := conv(raw)
		if err != nil {
			return fmt.Errorf("%w: coder %d item %q: %w", ErrConversion, coder, item, err)
		}
		u.add(item, v)
	}
	return nil
}

func isMissing[V comparable](v V, missing []V) bool {
	if v != v { //nolint:gocritic,staticcheck // only NaN is unequal to itself
		return true
	}
	return slices.Contains(missing, v)
}

// holdsInterface reports whether values of t can carry a dynamic type.
func holdsInterface(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return holdsInterface(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if holdsInterface(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

func comparableValue(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.Comparable()
}
