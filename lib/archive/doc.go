// Package archive stores timestamped JSON files with optional retention.
// The server uses two stores: an unbounded query journal (logs/, ".q"
// files) and a bounded backup folder (backups/, ".dtdb" files, newest N
// kept). File names embed a millisecond timestamp and a random suffix, so
// lexicographic order equals creation order and concurrent writers cannot
// collide.
package archive
