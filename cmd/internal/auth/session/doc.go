// Package session implements shelf's shared session and rate-counter storage.
//
// Every server process talks to the same Backend, so identity held in a
// SessionRecord and rate-limit windows are consistent across workers and
// listeners. Records expire by TTL; counters start a new window once the
// previous one has elapsed.
//
// Backends:
//   - MemoryStore: single process, for development and tests.
//   - PostgresStore: shelf.sessions / shelf.rate_counters over pgx.
//   - BoltStore: a bbolt file, for single-host deployments without Postgres.
//
// Infrastructure failures are reported as *UnavailableError; callers must fail
// closed on them.
package session
