package query

import (
	"sort"
)

// --------------------------------------------------------------------------
// Sort Specification
// --------------------------------------------------------------------------

// SortKey orders documents by a single field.
type SortKey struct {
	Field string `json:"field"`
	Asc   bool   `json:"asc"`
}

// Sort is a multi-key sort specification. Keys are applied in order, later
// keys break ties of earlier ones.
type Sort []SortKey

// NewSortKey creates a single sort key.
func NewSortKey(field string, asc bool) SortKey {
	return SortKey{Field: field, Asc: asc}
}

// Less orders two documents according to the sort specification.
// Documents missing a sort field sort after documents that have it.
func (s Sort) Less(a, b map[string]any) bool {
	for _, key := range s {
		va, okA := LookupPath(a, key.Field)
		vb, okB := LookupPath(b, key.Field)

		if !okA && !okB {
			continue
		}
		if okA != okB {
			return okA
		}

		cmp, comparable := compareValues(va, vb)
		if !comparable || cmp == 0 {
			continue
		}
		if key.Asc {
			return cmp < 0
		}
		return cmp > 0
	}
	return false
}

// Apply sorts documents in place. The sort is stable so that insertion
// order is preserved between equal documents.
func (s Sort) Apply(docs []map[string]any) {
	if len(s) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return s.Less(docs[i], docs[j])
	})
}
