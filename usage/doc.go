// Package usage is the idempotent per-identity, per-day usage ledger.
//
// A Store records an Attempt at most once per (identity, idempotency key)
// and increments the matching day counter in the same atomic step. Three
// stores are provided: MemoryStore for tests and single-process setups,
// GormStore for SQLite or PostgreSQL, and RedisStore, which does the check
// and increment in one Lua script.
//
// The Ledger applies the recording rule (only non-blank transcripts count)
// and reports usage against the limit from a quota.TierSource. It never
// blocks a request.
package usage
