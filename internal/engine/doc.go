// Package engine implements the attribute synchronization session at
// the heart of sheetwork.
//
// A session is the unit of work for one trigger invocation. Its life
// is a fixed asynchronous chain:
//
//  1. Resolve: list row ids for every declared repeating section
//     (concurrently, joined on a completion barrier) and expand the
//     declared (section, member) pairs into concrete attribute keys.
//  2. Read: one batched host read of every declared key.
//  3. Compute: handler logic mutates the in-memory view. Reads never
//     re-contact the host; writes go through to the local snapshot so
//     a later read within the session sees them.
//  4. Finalize: re-read exactly the keys the session wrote, diff the
//     buffered values against the fresh host values, and issue one
//     silent batched write of only the keys that actually changed.
//
// The diff-at-finalize re-read is deliberate: writing unchanged values
// back out would re-trigger the very handlers that computed them.
// The cost is weak consistency - a concurrent external edit to a key
// the session also wrote is silently overwritten, last writer wins.
// That trade is accepted and documented, not a defect.
//
// Sessions share nothing. All cross-invocation state lives in the
// host store; a session that reached Finalize is dead. Separate
// sessions for different triggers may overlap at the host-call level.
//
// Row identity: appended rows get ids from the host's generator, which
// carries no uniqueness guarantee. The session keeps every id it has
// seen or minted and retries generation until it gets a fresh one;
// within one session all row ids are pairwise distinct.
package engine
