// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package store holds the client's locally cached view of room state:
// membership, profiles, receipts, account data, and per-room metadata
// derived from incremental sync diffs.
//
// The package has three layers. [StateStore] is the capability
// contract any storage engine must implement — every read distinguishes
// "absent" (zero result, nil error) from failure, and [StateChanges]
// batches one sync cycle's heterogeneous diffs for atomic application
// via SaveChanges. [Store] is the façade the rest of the client talks
// to: it wraps a StateStore, partitions live [Room] objects into a
// confirmed cache (joined and left rooms, full state) and a stripped
// cache (invite previews, limited state), and guards the active
// [Session] and sync token. [MemoryStore] is the in-memory reference
// implementation of the contract; persistent engines plug in from
// outside this module through the same interface.
//
// A Room never owns the backend — it holds a non-owning StateStore
// handle for read-through lookups. Exactly one live Room instance
// exists per room ID per partition; lookups for a room recorded as
// invited always resolve through the stripped partition, even when a
// stale confirmed entry is still present.
package store
