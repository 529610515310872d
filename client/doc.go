// Package client provides a small HTTP client for the /backend endpoint of
// a running database server. It serializes queries with the query package,
// attaches an optional bearer token and retries failed attempts.
package client
