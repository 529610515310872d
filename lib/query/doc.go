// Package query defines the wire-level query model of the database: the
// query types, the condition tree, sort specifications and results.
//
// A request is either a single Query or a TransactionQuery. Both share one
// JSON envelope distinguished by a "className" field, so a request body can
// be restored with ParseRequest without knowing its kind up front:
//
//	req, err := query.ParseRequest(body)
//
// Key Components:
//
//   - QueryType: enumerates all operations (add, update, search, ...). It
//     serializes as its string name so that wire payloads stay readable.
//
//   - Query: a single operation against one collection. Which fields are
//     meaningful depends on the type; unused fields are omitted on the wire.
//
//   - TransactionQuery: an ordered list of queries executed atomically.
//
//   - Node: the condition tree ("cause") restricting a query to matching
//     documents. Leaf nodes compare one (possibly nested, dot-separated)
//     field against a constant; and/or/not nodes combine them. Nodes
//     serialize with a "type" discriminator.
//
//   - Sort: a multi-key sort specification applied to search results.
//
//   - Result / TransactionResult: the outcome returned to the caller,
//     including the affected documents, hit/update counters and the size of
//     the target collection.
//
// The package is intentionally free of storage concerns: evaluation of a
// node against a document is pure, and execution of queries lives in the
// db package.
package query
