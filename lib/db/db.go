package db

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Constants for the snapshot file format
const (
	snapshotClassName = "DeltaTraceDatabase"
	snapshotVersion   = 1
)

// --------------------------------------------------------------------------
// Database Type
// --------------------------------------------------------------------------

// Database is an in-memory document database: a registry of named
// collections. All methods are safe for concurrent use.
type Database struct {
	collections *xsync.MapOf[string, *Collection]

	// txMu serializes transactions against everything else. Plain queries
	// hold the read side, transactions the write side.
	txMu sync.RWMutex
}

// New creates an empty database.
func New() *Database {
	return &Database{
		collections: xsync.NewMapOf[string, *Collection](),
	}
}

// Collection returns the collection with the given name, creating it if it
// does not exist yet.
func (d *Database) Collection(name string) *Collection {
	col, _ := d.collections.LoadOrCompute(name, NewCollection)
	return col
}

// CollectionNames returns the names of all collections in sorted order.
func (d *Database) CollectionNames() []string {
	var names []string
	d.collections.Range(func(name string, _ *Collection) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Length returns the total number of documents across all collections.
func (d *Database) Length() int {
	total := 0
	d.collections.Range(func(_ string, col *Collection) bool {
		total += col.Length()
		return true
	})
	return total
}

// --------------------------------------------------------------------------
// Snapshot Format
// --------------------------------------------------------------------------

// snapshotFile is the on-disk form of a full database snapshot.
type snapshotFile struct {
	ClassName   string                     `json:"className"`
	Version     int                        `json:"version"`
	Collections map[string]collectionState `json:"collections"`
}

// ToMap returns a serializable snapshot of the whole database. The
// returned value shares no state with the database. It waits for running
// transactions, so a snapshot never contains half-applied state.
func (d *Database) ToMap() map[string]any {
	d.txMu.RLock()
	defer d.txMu.RUnlock()

	collections := map[string]any{}
	d.collections.Range(func(name string, col *Collection) bool {
		state := col.snapshot()
		collections[name] = map[string]any{
			"docs":   state.Docs,
			"serial": state.Serial,
		}
		return true
	})
	return map[string]any{
		"className":   snapshotClassName,
		"version":     snapshotVersion,
		"collections": collections,
	}
}

// Save persists a snapshot of the database to the provided io.Writer. Like
// ToMap it waits for running transactions.
func (d *Database) Save(w io.Writer) error {
	d.txMu.RLock()
	defer d.txMu.RUnlock()

	file := snapshotFile{
		ClassName:   snapshotClassName,
		Version:     snapshotVersion,
		Collections: map[string]collectionState{},
	}
	d.collections.Range(func(name string, col *Collection) bool {
		file.Collections[name] = col.snapshot()
		return true
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// Load restores the database from snapshot data provided by an io.Reader.
// Existing collections are replaced.
func (d *Database) Load(r io.Reader) error {
	var file snapshotFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if file.ClassName != snapshotClassName {
		return fmt.Errorf("not a database snapshot (className %q)", file.ClassName)
	}
	if file.Version > snapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", file.Version, snapshotVersion)
	}

	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.collections.Clear()
	for name, state := range file.Collections {
		col := NewCollection()
		col.restore(state)
		d.collections.Store(name, col)
	}
	return nil
}
