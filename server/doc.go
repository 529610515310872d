// Package server implements the HTTP front of the database.
//
// The business surface is a single endpoint, POST /backend, which accepts
// one query or one transaction per request (see the query package for the
// wire format). Maintenance query types are prohibited over the wire and
// answered with 403; malformed bodies with 400; every other failure is
// reported through the isSuccess flag of the returned result so clients
// can inspect it. Successfully executed queries are appended as raw JSON
// to the query journal.
//
// Around the business endpoint the server carries permissive CORS,
// optional bearer-JWT authentication, a /healthz endpoint with database
// statistics and a Prometheus /metrics endpoint.
//
// Backups: a cron schedule (default daily at 01:00) snapshots the whole
// database into the backup folder, keeping only the newest N files. On
// shutdown a final backup is written; with RestoreOnStart the newest
// backup is loaded before the listener comes up.
package server
