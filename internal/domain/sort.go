package domain

import (
	"sort"
	"strings"
)

// SortOrder identifies one sort direction.
type SortOrder string

// SortOrder values.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// NormalizeSortOrder canonicalizes one raw sort-order value, defaulting to
// ascending.
func NormalizeSortOrder(raw string) SortOrder {
	if strings.ToLower(strings.TrimSpace(raw)) == string(SortDesc) {
		return SortDesc
	}
	return SortAsc
}

// FieldValue carries one extracted sort key. Absent values always order
// after present ones regardless of direction, so records with no value for
// the key land at the end of the visible list either way.
type FieldValue struct {
	Text    string
	Number  float64
	Numeric bool
	Present bool
}

// TextValue wraps a string sort key.
func TextValue(s string) FieldValue {
	return FieldValue{Text: s, Present: true}
}

// NumberValue wraps a numeric sort key.
func NumberValue(n float64) FieldValue {
	return FieldValue{Number: n, Numeric: true, Present: true}
}

// AbsentValue marks a record with no value for the sort key.
func AbsentValue() FieldValue {
	return FieldValue{}
}

// SortByField stably orders records by an extracted key without mutating the
// input slice. Records with equal keys keep their relative input order. The
// key extractor runs once per record; ordering happens over an index view so
// precomputed keys stay aligned with their records.
func SortByField[T any](records []T, field func(T) FieldValue, order SortOrder) []T {
	out := append([]T(nil), records...)
	if field == nil || len(out) < 2 {
		return out
	}
	keys := make([]FieldValue, len(out))
	for i, record := range out {
		keys[i] = field(record)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return fieldLess(keys[idx[i]], keys[idx[j]], order)
	})
	sorted := make([]T, len(out))
	for pos, i := range idx {
		sorted[pos] = out[i]
	}
	return sorted
}

// fieldLess orders two extracted keys under the requested direction.
func fieldLess(a, b FieldValue, order SortOrder) bool {
	if !a.Present || !b.Present {
		// Absent keys sort last in both directions.
		return a.Present && !b.Present
	}
	var less, equal bool
	if a.Numeric && b.Numeric {
		less = a.Number < b.Number
		equal = a.Number == b.Number
	} else {
		at, bt := strings.ToLower(a.Text), strings.ToLower(b.Text)
		less = at < bt
		equal = at == bt
	}
	if equal {
		return false
	}
	if order == SortDesc {
		return !less
	}
	return less
}
