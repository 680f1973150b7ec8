// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package watch provides a single-writer, multi-reader observable
// value cell.
//
// A [Cell] holds the latest value of a cursor that one writer advances
// and many readers observe: the sliding-sync position and delta token.
// Readers either poll with [Cell.Get] or register with [Cell.Watch]
// for change notification. Notification is conflating — a slow
// observer is woken when something changed and then reads the latest
// value; intermediate values are not queued. This is deliberately a
// latest-value signal, not an event bus: no history, no ordering
// guarantees between observers, no delivery of every write.
package watch
