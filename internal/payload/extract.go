package payload

// Field extraction: each canonical field is located by trying an ordered list
// of candidate dot paths until one resolves to a present, well-typed value.
// Once a candidate hits, lower-precedence candidates are never consulted.
// Absence, nulls, wrong types and unparsable numeric strings all mean "try
// the next candidate"; nothing here ever returns an error.

// FirstString returns the first candidate path resolving to a native string.
func FirstString(root Value, paths ...string) (string, bool) {
	for _, p := range paths {
		node, ok := root.At(p)
		if !ok {
			continue
		}
		if s, ok := node.AsString(); ok {
			return s, true
		}
	}
	return "", false
}

// FirstNumber returns the first candidate path resolving to a number.
// Numeric strings count; parse failures fall through to the next candidate.
func FirstNumber(root Value, paths ...string) (float64, bool) {
	for _, p := range paths {
		node, ok := root.At(p)
		if !ok {
			continue
		}
		if n, ok := node.AsNumber(); ok {
			return n, true
		}
	}
	return 0, false
}

// FirstBool returns the first candidate path resolving to a native boolean.
func FirstBool(root Value, paths ...string) (bool, bool) {
	for _, p := range paths {
		node, ok := root.At(p)
		if !ok {
			continue
		}
		if b, ok := node.AsBool(); ok {
			return b, true
		}
	}
	return false, false
}

// FirstList returns the first candidate path resolving to a non-empty list.
func FirstList(root Value, paths ...string) ([]Value, bool) {
	for _, p := range paths {
		node, ok := root.At(p)
		if !ok {
			continue
		}
		if items := node.Items(); len(items) > 0 {
			return items, true
		}
	}
	return nil, false
}
