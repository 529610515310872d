package db

import (
	"sync"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/db/util"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
)

// --------------------------------------------------------------------------
// Collection Type
// --------------------------------------------------------------------------

// Collection is an ordered set of JSON documents plus a serial counter.
// All exported methods are safe for concurrent use. Documents handed out
// by a collection are always deep copies of the stored state.
type Collection struct {
	mu     sync.RWMutex
	docs   []map[string]any
	serial int64
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Length returns the number of stored documents.
func (c *Collection) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Serial returns the current value of the serial counter.
func (c *Collection) Serial() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serial
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Add appends deep copies of the given documents. If serialKey is not
// empty, each added document receives the next serial number in that field.
// It returns clones of the documents as stored.
func (c *Collection) Add(docs []map[string]any, serialKey string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(docs, serialKey)
}

func (c *Collection) addLocked(docs []map[string]any, serialKey string) []map[string]any {
	added := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		clone := util.CloneDocument(doc)
		if clone == nil {
			clone = map[string]any{}
		}
		if serialKey != "" {
			c.serial++
			clone[serialKey] = c.serial
		}
		c.docs = append(c.docs, clone)
		added = append(added, util.CloneDocument(clone))
	}
	return added
}

// Update merges override into every document matching cause. A nil cause
// matches every document. When onlyOne is set, only the first match is
// updated. It returns the number of matches and clones of the updated
// documents.
func (c *Collection) Update(cause query.Node, override map[string]any, onlyOne bool) (int, []map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var updated []map[string]any
	for _, doc := range c.docs {
		if cause != nil && !cause.Evaluate(doc) {
			continue
		}
		for key, value := range override {
			doc[key] = util.CloneValue(value)
		}
		updated = append(updated, util.CloneDocument(doc))
		if onlyOne {
			break
		}
	}
	return len(updated), updated
}

// Delete removes every document matching cause. A nil cause matches every
// document. When onlyOne is set, only the first match is removed. It
// returns the number of removals and clones of the removed documents.
func (c *Collection) Delete(cause query.Node, onlyOne bool) (int, []map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		kept    = c.docs[:0]
		removed []map[string]any
		done    bool
	)
	for _, doc := range c.docs {
		matches := !done && (cause == nil || cause.Evaluate(doc))
		if !matches {
			kept = append(kept, doc)
			continue
		}
		removed = append(removed, util.CloneDocument(doc))
		if onlyOne {
			done = true
		}
	}
	c.docs = kept
	return len(removed), removed
}

// Clear removes every document. The serial counter is reset only when
// resetSerial is set.
func (c *Collection) Clear(resetSerial bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearLocked(resetSerial)
}

func (c *Collection) clearLocked(resetSerial bool) int {
	removed := len(c.docs)
	c.docs = nil
	if resetSerial {
		c.serial = 0
	}
	return removed
}

// ClearAdd clears the collection and adds the given documents in a single
// atomic step.
func (c *Collection) ClearAdd(docs []map[string]any, serialKey string, resetSerial bool) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clearLocked(resetSerial)
	return c.addLocked(docs, serialKey)
}

// ConformToTemplate reshapes every document to the keys of the template.
// Existing values are kept, missing keys receive the template value, keys
// not in the template are dropped. It returns the number of documents.
func (c *Collection) ConformToTemplate(template map[string]any) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, doc := range c.docs {
		conformed := make(map[string]any, len(template))
		for key, fallback := range template {
			if value, ok := doc[key]; ok {
				conformed[key] = value
			} else {
				conformed[key] = util.CloneValue(fallback)
			}
		}
		c.docs[i] = conformed
	}
	return len(c.docs)
}

// RenameField renames the field before to after in every document that has
// it. The rename fails without side effects if any document already
// carries the new name alongside the old one.
func (c *Collection) RenameField(before, after string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// validation pass first so the rename is all-or-nothing
	for _, doc := range c.docs {
		if _, hasOld := doc[before]; !hasOld {
			continue
		}
		if _, hasNew := doc[after]; hasNew {
			return 0, NewErrorf(RetCConflict, "field %q already exists", after)
		}
	}

	renamed := 0
	for _, doc := range c.docs {
		value, ok := doc[before]
		if !ok {
			continue
		}
		delete(doc, before)
		doc[after] = value
		renamed++
	}
	return renamed, nil
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Search returns clones of every document matching cause, ordered by sort
// and paged by offset/limit. The second return value is the total number
// of matches before paging. When onlyOne is set, at most one document is
// returned: the first match after sorting and the offset are applied.
func (c *Collection) Search(cause query.Node, sort query.Sort, offset, limit int, onlyOne bool) ([]map[string]any, int) {
	c.mu.RLock()
	var matches []map[string]any
	for _, doc := range c.docs {
		if cause == nil || cause.Evaluate(doc) {
			matches = append(matches, util.CloneDocument(doc))
		}
	}
	c.mu.RUnlock()

	hits := len(matches)
	sort.Apply(matches)

	if offset > 0 {
		if offset >= len(matches) {
			matches = nil
		} else {
			matches = matches[offset:]
		}
	}

	if onlyOne {
		if len(matches) == 0 {
			return []map[string]any{}, hits
		}
		return matches[:1], hits
	}

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []map[string]any{}
	}
	return matches, hits
}

// Count returns the number of documents matching cause. A nil cause counts
// every document.
func (c *Collection) Count(cause query.Node) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cause == nil {
		return len(c.docs)
	}
	count := 0
	for _, doc := range c.docs {
		if cause.Evaluate(doc) {
			count++
		}
	}
	return count
}

// --------------------------------------------------------------------------
// Snapshot Operations
// --------------------------------------------------------------------------

// collectionState is the serializable snapshot of a collection, also used
// to roll back failed transactions.
type collectionState struct {
	Docs   []map[string]any `json:"docs"`
	Serial int64            `json:"serial"`
}

// snapshot returns a deep copy of the collection state.
func (c *Collection) snapshot() collectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return collectionState{
		Docs:   util.CloneDocuments(c.docs),
		Serial: c.serial,
	}
}

// restore replaces the collection state with the given snapshot.
func (c *Collection) restore(state collectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = util.CloneDocuments(state.Docs)
	c.serial = state.Serial
}
