// Package store executes lowered WHERE clauses against SQLite.
//
// Select builds
//
//	SELECT * FROM "<table>" WHERE <clause> ORDER BY rowid
//
// with sqlb, the clause placeholders renumbered to "$N", and binds clause
// parameters positionally. SelectQuery runs any other sqlb expression the
// same way. Constants never reach the SQL text, so a value like
// "x' or 1=1 --" only ever matches itself.
//
// # Critical Patterns
//
// Invariant check first: a clause whose placeholder count differs from its
// parameter count is rejected before the database sees it.
//
// Deterministic results: every Select orders by rowid, so the same data
// always yields the same row order.
//
// Statement cache: prepared statements are keyed by query text. Clauses
// with the same shape but different constants share one statement. At most
// StatementCacheSize statements are kept; the least recently used one is
// evicted and closed once no query is using it.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection, which also keeps ":memory:" databases shared
package store
