// Package db implements the in-memory document database behind the server.
// A Database is a registry of named Collections; a Collection is an ordered
// set of JSON documents (map[string]any) plus a serial counter for
// auto-numbered fields.
//
// Execution entry points:
//
//	outcome := database.Execute(req, prohibitedTypes...)
//
// Execute accepts any parsed query.Request. Plain queries run concurrently
// against their collection; transactions take the database-wide write lock,
// snapshot every collection they touch and roll back on the first failing
// sub query, so partial application is never observable.
//
// Consistency rules:
//
//   - Documents returned by any operation are deep copies. Mutating a
//     result never changes stored state.
//   - Prohibited query types are rejected before any mutation, for plain
//     queries and transactions alike.
//   - The serial counter of a collection only moves forward; it is reset
//     exclusively through clear/clearAdd queries with resetSerial set.
//
// Snapshots: Save and Load persist the full database as an indented JSON
// file carrying a className/version header, the format the backup scheduler
// writes to disk. ToMap produces the same shape as a plain value for
// callers that embed the snapshot elsewhere.
package db
