// Package store provides the shared key/value store that page observers
// write security snapshots into and the summary panel reads them from.
//
// Two implementations are available:
//   - MemoryStore keeps values in process memory and is used when the
//     observer and the panel live in the same process, and in tests.
//   - SQLiteStore persists values in a single SQLite file (via
//     modernc.org/sqlite) so that a panel invoked later, from another
//     process, sees what the observer last wrote.
//
// Writes are last-write-wins per key. There is no locking across keys and no
// versioning; the store never retries a failed operation.
package store
