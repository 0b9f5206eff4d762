package delta

import "sort"

// Attributes holds inline formatting such as "bold" or "color".
// An empty value on a retain removes the attribute.
type Attributes map[string]string

// Clone returns a copy of a, or nil when a is empty.
func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Equal reports whether both sets hold the same keys and values.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// composeAttributes layers b over a. Removal markers survive only when the
// result still applies to a retain (keepRemovals).
func composeAttributes(a, b Attributes, keepRemovals bool) Attributes {
	out := make(Attributes, len(a)+len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		if _, ok := b[k]; !ok {
			out[k] = v
		}
	}
	if !keepRemovals {
		for k, v := range out {
			if v == "" {
				delete(out, k)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// invertAttributes returns the attributes that undo applying attr on top of base.
func invertAttributes(attr, base Attributes) Attributes {
	out := Attributes{}
	for k, v := range base {
		if av, ok := attr[k]; ok && av != v {
			out[k] = v
		}
	}
	for k := range attr {
		if _, ok := base[k]; !ok {
			out[k] = ""
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
