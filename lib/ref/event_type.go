// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package ref

// EventType identifies a Matrix state, timeline, or account data event
// type (e.g., "m.room.member", "m.push_rules").
//
// EventType is a named string type, not a struct wrapper: event types
// are opaque identifiers that need no parsing or validation. The type
// exists purely for compile-time safety — preventing accidental use of
// a state key or user ID where an event type is expected.
type EventType string

// Standard Matrix event types used by the state store.
const (
	EventTypeMember         EventType = "m.room.member"
	EventTypeName           EventType = "m.room.name"
	EventTypeCreate         EventType = "m.room.create"
	EventTypeCanonicalAlias EventType = "m.room.canonical_alias"
	EventTypePresence       EventType = "m.presence"
	EventTypeReceipt        EventType = "m.receipt"
)

// String returns the event type string (e.g., "m.room.member").
func (t EventType) String() string { return string(t) }
