// Package alpha computes Krippendorff's alpha, a reliability coefficient for
// ratings that several coders assigned to a shared set of items.
//
// Conventions:
//   - Raw ratings are of any comparable type V and pass through a Converter
//     before a distance metric ever sees them; metrics operate on float64.
//   - The package holds no global state. Every call normalizes its input,
//     computes one coefficient and keeps nothing afterwards.
package alpha

import (
	"cmp"
	"iter"
	"slices"
	"strconv"
)

// ItemID identifies a rated item (a "unit" in Krippendorff's terminology).
type ItemID string

// PositionID returns the item identifier synthesized for index i of a
// PositionalGroup. KeyedGroup keys that follow the same scheme ("0", "1", ...)
// address the same items.
func PositionID(i int) ItemID {
	return ItemID(strconv.Itoa(i))
}

// CompareItemIDs orders identifiers numerically when both are integers and
// lexically otherwise, so "2" sorts before "10" and keyed groups visit
// positional-style keys in index order.
func CompareItemIDs(a, b ItemID) int {
	ai, aerr := strconv.Atoi(string(a))
	bi, berr := strconv.Atoi(string(b))
	switch {
	case aerr == nil && berr == nil:
		return cmp.Or(cmp.Compare(ai, bi), cmp.Compare(a, b))
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// RatingGroup holds the raw ratings of a single coder. It is a closed set:
// either a KeyedGroup or a PositionalGroup.
type RatingGroup[V comparable] interface {
	// Ratings yields (item, raw value) pairs in a deterministic order.
	Ratings() iter.Seq2[ItemID, V]

	ratingGroup()
}

// KeyedGroup maps item identifiers to a coder's raw ratings. Items the coder
// did not rate are simply absent.
type KeyedGroup[V comparable] map[ItemID]V

func (KeyedGroup[V]) ratingGroup() {}

// Ratings yields the group's pairs ordered by CompareItemIDs.
func (g KeyedGroup[V]) Ratings() iter.Seq2[ItemID, V] {
	return func(yield func(ItemID, V) bool) {
		keys := make([]ItemID, 0, len(g))
		for k := range g {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, CompareItemIDs)
		for _, k := range keys {
			if !yield(k, g[k]) {
				return
			}
		}
	}
}

// PositionalGroup lists a coder's raw ratings by item position. Gaps must be
// filled with a missing-value sentinel.
type PositionalGroup[V comparable] []V

func (PositionalGroup[V]) ratingGroup() {}

// Ratings yields the group's values keyed by PositionID.
func (g PositionalGroup[V]) Ratings() iter.Seq2[ItemID, V] {
	return func(yield func(ItemID, V) bool) {
		for i, v := range g {
			if !yield(PositionID(i), v) {
				return
			}
		}
	}
}

// Dataset is the full rating input: one RatingGroup per coder, in coder order.
type Dataset[V comparable] []RatingGroup[V]

// Matrix builds a Dataset of positional groups from a coder-by-item table.
func Matrix[V comparable](rows [][]V) Dataset[V] {
	data := make(Dataset[V], 0, len(rows))
	for _, row := range rows {
		data = append(data, PositionalGroup[V](row))
	}
	return data
}
