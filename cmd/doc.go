// Package cmd implements the command-line interface for the dtdb document
// database server. It provides a hierarchical command structure with
// operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the server
//   - db: Client commands for querying a running server (add, search, ...)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dtdb -help for a list of all commands.
package cmd
