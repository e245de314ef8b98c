package value

// Map is an insertion-ordered mapping from field label to value. The zero
// value is an empty map ready to use.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty map with room for n labels.
func NewMap(n int) Map {
	return Map{keys: make([]string, 0, n), vals: make(map[string]Value, n)}
}

// Set stores v under label. Re-setting a label keeps its original position.
func (m *Map) Set(label string, v Value) {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, ok := m.vals[label]; !ok {
		m.keys = append(m.keys, label)
	}
	m.vals[label] = v
}

// Get returns the value stored under label.
func (m Map) Get(label string) (Value, bool) {
	v, ok := m.vals[label]
	return v, ok
}

// Keys returns the labels in insertion order.
func (m Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of labels.
func (m Map) Len() int { return len(m.keys) }

// Equal reports whether both maps hold the same labels, in the same order,
// with equal values.
func (m Map) Equal(o Map) bool {
	if len(m.keys) != len(o.keys) {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !m.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// Interface returns the values in their natural Go form.
func (m Map) Interface() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.vals[k].Interface()
	}
	return out
}
