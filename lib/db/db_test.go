package db

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
)

// TestDatabaseCollections tests the collection registry
func TestDatabaseCollections(t *testing.T) {
	d := New()

	if len(d.CollectionNames()) != 0 {
		t.Errorf("New database should have no collections, got %v", d.CollectionNames())
	}

	// accessing a collection creates it, repeated access returns the same one
	a := d.Collection("users")
	b := d.Collection("users")
	if a != b {
		t.Error("Collection() must return the same instance for the same name")
	}

	d.Collection("items")

	names := d.CollectionNames()
	if len(names) != 2 || names[0] != "items" || names[1] != "users" {
		t.Errorf("Expected sorted names [items users], got %v", names)
	}
}

// TestDatabaseLength tests the document count across collections
func TestDatabaseLength(t *testing.T) {
	d := New()
	d.Collection("a").Add([]map[string]any{{"x": float64(1)}, {"x": float64(2)}}, "")
	d.Collection("b").Add([]map[string]any{{"x": float64(3)}}, "")

	if d.Length() != 3 {
		t.Errorf("Expected 3 documents total, got %d", d.Length())
	}
}

// TestDatabaseSaveLoad tests the snapshot round trip including serial state
func TestDatabaseSaveLoad(t *testing.T) {
	d := New()
	d.Collection("users").Add([]map[string]any{
		{"name": "alice"},
		{"name": "bob"},
	}, "id")
	d.Collection("items").Add([]map[string]any{{"sku": "x-1"}}, "")

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	restored := New()
	// pre-populate to verify Load replaces existing state
	restored.Collection("stale").Add([]map[string]any{{"junk": true}}, "")

	if err := restored.Load(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	names := restored.CollectionNames()
	if len(names) != 2 {
		t.Fatalf("Expected 2 restored collections, got %v", names)
	}
	if restored.Collection("users").Length() != 2 {
		t.Errorf("Expected 2 restored users, got %d", restored.Collection("users").Length())
	}

	// the serial counter must continue where the snapshot left off
	added := restored.Collection("users").Add([]map[string]any{{"name": "carol"}}, "id")
	if added[0]["id"] != int64(3) {
		t.Errorf("Serial should continue at 3 after restore, got %v", added[0]["id"])
	}

	// restored documents are still queryable
	result := restored.ExecuteQuery(query.NewCount("users", query.NewCompare("name", query.OpEq, "alice")))
	if result.HitCount != 1 {
		t.Errorf("Expected to find alice after restore, got %d hits", result.HitCount)
	}
}

// gateNode signals when it is first evaluated and then blocks until
// released, holding the surrounding transaction open. It never matches, so
// a strict query using it as cause fails and forces a rollback.
type gateNode struct {
	signalOnce sync.Once
	entered    chan struct{}
	release    chan struct{}
}

func newGateNode() *gateNode {
	return &gateNode{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (n *gateNode) Evaluate(_ map[string]any) bool {
	n.signalOnce.Do(func() { close(n.entered) })
	<-n.release
	return false
}

// TestDatabaseSnapshotWaitsForTransactions tests that a snapshot taken
// during a transaction never contains half-applied state
func TestDatabaseSnapshotWaitsForTransactions(t *testing.T) {
	d := New()
	gate := newGateNode()

	// the transaction first adds a document, then fails on a strict delete
	// whose cause blocks until released, so the add is transiently visible
	// inside the transaction before the rollback removes it again
	strict := query.NewDeleteOne("users", gate)
	strict.MustAffectAtLeastOne = true

	done := make(chan *query.TransactionResult, 1)
	go func() {
		done <- d.ExecuteTransaction(query.NewTransaction(
			query.NewAdd("users", map[string]any{"name": "phantom"}),
			strict,
		))
	}()

	// wait until the transaction holds the uncommitted add, then release
	// the gate shortly after so the concurrent snapshot has to wait it out
	<-gate.entered
	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate.release)
	}()

	snapshot := d.ToMap()

	tr := <-done
	if tr.IsSuccess {
		t.Fatal("Transaction should have failed and rolled back")
	}

	// the snapshot must reflect the rolled-back state, never the phantom doc
	collections := snapshot["collections"].(map[string]any)
	if state, ok := collections["users"]; ok {
		docs := state.(map[string]any)["docs"].([]map[string]any)
		if len(docs) != 0 {
			t.Errorf("Snapshot contains uncommitted transaction state: %v", docs)
		}
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if strings.Contains(buf.String(), "phantom") {
		t.Error("Saved snapshot contains uncommitted transaction state")
	}
}

// TestDatabaseLoadRejectsForeignData tests snapshot validation
func TestDatabaseLoadRejectsForeignData(t *testing.T) {
	cases := []string{
		`{"className":"SomethingElse","version":1,"collections":{}}`,
		`{"className":"DeltaTraceDatabase","version":99,"collections":{}}`,
		`not json`,
	}
	for _, raw := range cases {
		d := New()
		if err := d.Load(strings.NewReader(raw)); err == nil {
			t.Errorf("Load(%s) should return an error", raw)
		}
	}
}
