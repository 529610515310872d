package query

import (
	"encoding/json"
	"testing"
)

var testDoc = map[string]any{
	"name":   "alice",
	"age":    float64(30),
	"active": true,
	"tags":   []any{"admin", "staff"},
	"address": map[string]any{
		"city": "Berlin",
	},
}

// TestCompareOperators tests every comparison operator against a document
func TestCompareOperators(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"eq match", NewCompare("name", OpEq, "alice"), true},
		{"eq mismatch", NewCompare("name", OpEq, "bob"), false},
		{"eq numeric normalization", NewCompare("age", OpEq, 30), true},
		{"neq", NewCompare("name", OpNeq, "bob"), true},
		{"gt", NewCompare("age", OpGt, 29), true},
		{"gt equal", NewCompare("age", OpGt, 30), false},
		{"gte equal", NewCompare("age", OpGte, 30), true},
		{"lt", NewCompare("age", OpLt, 31), true},
		{"lte equal", NewCompare("age", OpLte, 30), true},
		{"contains substring", NewCompare("name", OpContains, "lic"), true},
		{"contains array member", NewCompare("tags", OpContains, "admin"), true},
		{"contains missing member", NewCompare("tags", OpContains, "guest"), false},
		{"startsWith", NewCompare("name", OpStartsWith, "al"), true},
		{"endsWith", NewCompare("name", OpEndsWith, "ce"), true},
		{"in match", NewCompare("name", OpIn, []any{"bob", "alice"}), true},
		{"in mismatch", NewCompare("name", OpIn, []any{"bob", "carol"}), false},
		{"bool eq", NewCompare("active", OpEq, true), true},
		{"dotted path", NewCompare("address.city", OpEq, "Berlin"), true},
		{"missing field", NewCompare("missing", OpEq, "x"), false},
		{"missing nested path", NewCompare("address.zip", OpEq, "x"), false},
		{"incomparable types", NewCompare("name", OpGt, 5), false},
	}

	for _, tc := range tests {
		if got := tc.node.Evaluate(testDoc); got != tc.want {
			t.Errorf("%s: Evaluate() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestLogicalNodes tests and/or/not composition
func TestLogicalNodes(t *testing.T) {
	isAlice := NewCompare("name", OpEq, "alice")
	isBob := NewCompare("name", OpEq, "bob")
	isAdult := NewCompare("age", OpGte, 18)

	if !NewAnd(isAlice, isAdult).Evaluate(testDoc) {
		t.Error("And of two matching nodes should match")
	}
	if NewAnd(isAlice, isBob).Evaluate(testDoc) {
		t.Error("And with a failing node should not match")
	}
	if !NewAnd().Evaluate(testDoc) {
		t.Error("Empty And should match everything")
	}

	if !NewOr(isBob, isAlice).Evaluate(testDoc) {
		t.Error("Or with one matching node should match")
	}
	if NewOr(isBob).Evaluate(testDoc) {
		t.Error("Or with only failing nodes should not match")
	}

	if NewNot(isAlice).Evaluate(testDoc) {
		t.Error("Not of a matching node should not match")
	}
	if !NewNot(isBob).Evaluate(testDoc) {
		t.Error("Not of a failing node should match")
	}
}

// TestNodeWireRoundTrip tests that a node tree survives encode -> decode
func TestNodeWireRoundTrip(t *testing.T) {
	original := NewAnd(
		NewCompare("age", OpGte, float64(18)),
		NewOr(
			NewCompare("name", OpStartsWith, "al"),
			NewNot(NewCompare("active", OpEq, false)),
		),
	)

	raw, err := EncodeNode(original)
	if err != nil {
		t.Fatalf("EncodeNode returned error: %v", err)
	}

	restored, err := DecodeNode(raw)
	if err != nil {
		t.Fatalf("DecodeNode returned error: %v", err)
	}

	// both trees must agree on matching and non-matching documents
	if restored.Evaluate(testDoc) != original.Evaluate(testDoc) {
		t.Error("Restored node disagrees with original on a matching document")
	}
	other := map[string]any{"name": "bob", "age": float64(10), "active": false}
	if restored.Evaluate(other) != original.Evaluate(other) {
		t.Error("Restored node disagrees with original on a non-matching document")
	}
}

// TestNodeZeroValueEncoding tests that zero comparison values survive encoding
func TestNodeZeroValueEncoding(t *testing.T) {
	for _, value := range []any{0, "", false} {
		raw, err := EncodeNode(NewCompare("field", OpEq, value))
		if err != nil {
			t.Fatalf("EncodeNode returned error: %v", err)
		}

		var env map[string]any
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("Encoded node is not valid JSON: %v", err)
		}
		if _, ok := env["value"]; !ok {
			t.Errorf("Encoded node dropped zero value %#v: %s", value, raw)
		}
	}
}

// TestDecodeNodeErrors tests rejection of malformed node JSON
func TestDecodeNodeErrors(t *testing.T) {
	cases := []string{
		`{"type":"bogus","field":"a","value":1}`,
		`{"type":"eq","value":1}`,
		`{"type":"not"}`,
		`not json`,
	}
	for _, raw := range cases {
		if _, err := DecodeNode([]byte(raw)); err == nil {
			t.Errorf("DecodeNode(%s) should return an error", raw)
		}
	}
}
