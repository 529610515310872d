package util

import (
	"testing"
)

// TestCloneDocument tests deep copy semantics of nested state
func TestCloneDocument(t *testing.T) {
	original := map[string]any{
		"name": "alice",
		"tags": []any{"a", "b"},
		"nested": map[string]any{
			"x": float64(1),
		},
	}

	clone := CloneDocument(original)

	// mutate every level of the clone
	clone["name"] = "mallory"
	clone["tags"].([]any)[0] = "z"
	clone["nested"].(map[string]any)["x"] = float64(99)

	if original["name"] != "alice" {
		t.Error("Top level value leaked into the original")
	}
	if original["tags"].([]any)[0] != "a" {
		t.Error("Array state leaked into the original")
	}
	if original["nested"].(map[string]any)["x"] != float64(1) {
		t.Error("Nested object state leaked into the original")
	}
}

// TestCloneDocumentNil tests the nil document edge case
func TestCloneDocumentNil(t *testing.T) {
	if CloneDocument(nil) != nil {
		t.Error("Cloning nil should yield nil")
	}
}

// TestCloneDocuments tests cloning a document slice
func TestCloneDocuments(t *testing.T) {
	docs := []map[string]any{
		{"n": float64(1)},
		{"n": float64(2)},
	}

	clones := CloneDocuments(docs)
	if len(clones) != 2 {
		t.Fatalf("Expected 2 clones, got %d", len(clones))
	}

	clones[0]["n"] = float64(99)
	if docs[0]["n"] != float64(1) {
		t.Error("Clone mutation leaked into the original slice")
	}
}
