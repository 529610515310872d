package util

// --------------------------------------------------------------------------
// Document Clone Helpers
// --------------------------------------------------------------------------

// CloneDocument returns a deep copy of a document. Nested objects and
// arrays are copied recursively, scalar values are shared (they are
// immutable in the JSON data model).
func CloneDocument(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	clone := make(map[string]any, len(doc))
	for key, value := range doc {
		clone[key] = CloneValue(value)
	}
	return clone
}

// CloneDocuments returns a deep copy of a document slice.
func CloneDocuments(docs []map[string]any) []map[string]any {
	clones := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		clones = append(clones, CloneDocument(doc))
	}
	return clones
}

// CloneValue deep-copies a single JSON value.
func CloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneDocument(v)
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = CloneValue(item)
		}
		return clone
	default:
		return v
	}
}
