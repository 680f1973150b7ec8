// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package slidingsync implements the client side of a windowed
// ("sliding") synchronization session: named views over the room
// list, optional protocol extensions, per-room subscriptions, and an
// observable position/delta-token cursor.
//
// A session is assembled by a Builder. When a storage key is
// configured, Build restores the session from frozen snapshot records
// persisted through the store's custom key-value capability: each
// view's cursor and cached rooms first, then the session-level
// cursor. The live SlidingSync object can write those records back
// with Persist, so a process restart resumes where the previous one
// left off instead of paying for a full resync.
package slidingsync
