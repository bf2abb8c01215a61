// Package host defines the contract between the sheet engine and the
// document host that owns attribute storage.
//
// The host exposes attributes only through batched, asynchronous
// operations: read a set of keys, write a set of values, list the row
// ids of a repeating section, mint a new row id. There is no
// transactional or synchronous access; the engine layers its own
// consistency discipline (see internal/engine) on top of this surface.
//
// # Key Grammar
//
// Flat attributes use their bare name ("epithet", "version"). Row
// attributes are namespaced as
//
//	repeating_<section>_<rowID>_<member>
//
// Section names must not contain underscores; row ids must not contain
// underscores (the default generator emits hyphenated UUIDs). Member
// names may contain underscores. This keeps row keys parseable without
// a schema.
//
// # Implementations
//
// MemoryStore is the in-process implementation used by tests, the
// scenario harness, and the CLI simulator. It is also an EventSource:
// non-silent writes fan out change events to subscribers, which is how
// feedback-loop suppression in the engine becomes observable.
//
// SQLiteStore is a durable implementation backed by mattn/go-sqlite3
// with WAL mode and an embedded schema. It is a plain Store - in a
// hosted document the event origin is the document, not the database.
package host
