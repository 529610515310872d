package query

import (
	"strings"
)

// --------------------------------------------------------------------------
// Field Path Lookup
// --------------------------------------------------------------------------

// LookupPath resolves a dotted field path (e.g. "user.address.city") inside
// a document. The boolean return value indicates whether the path exists.
func LookupPath(doc map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	current := any(doc)
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// --------------------------------------------------------------------------
// Value Comparison
// --------------------------------------------------------------------------

// asFloat normalizes all numeric types to float64. JSON decoding yields
// float64 already, but documents built in Go code may carry int variants.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// equalValues compares two values for equality with numeric normalization.
func equalValues(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		return ok && fa == fb
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case nil:
		return b == nil
	default:
		return false
	}
}

// compareValues orders two values. The returned int is negative, zero or
// positive like strings.Compare. The boolean return value indicates whether
// the two values are comparable at all (numbers with numbers, strings with
// strings, bools with bools).
func compareValues(a, b any) (int, bool) {
	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(va, vb), true
	case bool:
		vb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case va == vb:
			return 0, true
		case !va:
			return -1, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}

// containsValue implements the "contains" operator: substring match for
// strings, membership for arrays.
func containsValue(actual, candidate any) bool {
	switch v := actual.(type) {
	case string:
		s, ok := candidate.(string)
		return ok && strings.Contains(v, s)
	case []any:
		for _, item := range v {
			if equalValues(item, candidate) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// hasAffix implements the "startsWith" / "endsWith" operators.
func hasAffix(actual, candidate any, prefix bool) bool {
	s, ok := actual.(string)
	if !ok {
		return false
	}
	affix, ok := candidate.(string)
	if !ok {
		return false
	}
	if prefix {
		return strings.HasPrefix(s, affix)
	}
	return strings.HasSuffix(s, affix)
}
