package schema

import "reflect"

type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeDeleted   ChangeType = "deleted"
	ChangeUpdated   ChangeType = "updated"
	ChangeUnchanged ChangeType = "unchanged"
)

// Change describes what happened to one label between two schemas.
type Change struct {
	Old  *Field
	New  *Field
	Type ChangeType
}

// Label returns the label the change refers to.
func (c Change) Label() string {
	if c.New != nil {
		return c.New.Label
	}
	if c.Old != nil {
		return c.Old.Label
	}
	return ""
}

// DiffReport summarizes schema changes.
type DiffReport struct {
	Added   int `json:"added" yaml:"added"`
	Deleted int `json:"deleted" yaml:"deleted"`
	Updated int `json:"updated" yaml:"updated"`
}

// Empty reports whether nothing changed.
func (r DiffReport) Empty() bool {
	return r.Added == 0 && r.Deleted == 0 && r.Updated == 0
}

// Diff compares two schemas by label. Changes follow b's order, with
// deletions appended in a's order.
func Diff(a, b []Field) []Change {
	result := []Change{}
	oldMap := make(map[string]*Field, len(a))
	for i := range a {
		oldMap[a[i].Label] = &a[i]
	}
	for i := range b {
		key := b[i].Label
		if old, ok := oldMap[key]; ok {
			if reflect.DeepEqual(*old, b[i]) {
				result = append(result, Change{Old: old, New: &b[i], Type: ChangeUnchanged})
			} else {
				result = append(result, Change{Old: old, New: &b[i], Type: ChangeUpdated})
			}
			delete(oldMap, key)
		} else {
			result = append(result, Change{Old: nil, New: &b[i], Type: ChangeAdded})
		}
	}
	for i := range a {
		if v, ok := oldMap[a[i].Label]; ok {
			result = append(result, Change{Old: v, New: nil, Type: ChangeDeleted})
		}
	}
	return result
}

// Summarize counts the changes by type.
func Summarize(changes []Change) DiffReport {
	var r DiffReport
	for _, c := range changes {
		switch c.Type {
		case ChangeAdded:
			r.Added++
		case ChangeDeleted:
			r.Deleted++
		case ChangeUpdated:
			r.Updated++
		}
	}
	return r
}
