package schema

import "sort"

// Sorted returns a copy of fields ordered by DisplayOrder. Fields with equal
// order keep their relative position.
func Sorted(fields []Field) []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// IndexOf returns the index of the field labelled label, or -1.
func IndexOf(fields []Field, label string) int {
	for i := range fields {
		if fields[i].Label == label {
			return i
		}
	}
	return -1
}

// NextDisplayOrder returns one past the largest display order in fields.
func NextDisplayOrder(fields []Field) int {
	highest := 0
	for _, f := range fields {
		if f.DisplayOrder > highest {
			highest = f.DisplayOrder
		}
	}
	return highest + 1
}

// Labels returns the labels of fields in order.
func Labels(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label
	}
	return out
}
