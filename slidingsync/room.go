// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import (
	"sync"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
	"github.com/bjorn-ove/matrix-sdk-go/store"
)

// Room is a sliding-sync room: the cached display name, pagination
// token, and timeline events the session knows about, plus a handle
// to the backing store for reads that go deeper than the cache. The
// room never owns the store.
type Room struct {
	roomID ref.RoomID
	store  *store.Store

	mu        sync.Mutex
	name      string
	prevBatch string
	timeline  []codec.RawMessage
}

func newRoomFromFrozen(backing *store.Store, cold frozenRoom) *Room {
	return &Room{
		roomID:    cold.RoomID,
		store:     backing,
		name:      cold.Name,
		prevBatch: cold.PrevBatch,
		timeline:  cold.Timeline,
	}
}

// RoomID returns the room's identity.
func (r *Room) RoomID() ref.RoomID {
	return r.roomID
}

// Name returns the cached display name, or "" when none is known.
func (r *Room) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

// PrevBatch returns the pagination token for fetching history before
// the cached timeline, or "" when none is known.
func (r *Room) PrevBatch() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prevBatch
}

// Timeline returns a copy of the cached timeline events, oldest
// first.
func (r *Room) Timeline() []codec.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]codec.RawMessage, len(r.timeline))
	copy(out, r.timeline)
	return out
}

// Update replaces the cached fields from a server response. Empty
// name and prev-batch leave the existing values in place; events are
// appended.
func (r *Room) Update(name, prevBatch string, events []codec.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != "" {
		r.name = name
	}
	if prevBatch != "" {
		r.prevBatch = prevBatch
	}
	r.timeline = append(r.timeline, events...)
}

// freeze captures the room for snapshot persistence.
func (r *Room) freeze() frozenRoom {
	r.mu.Lock()
	defer r.mu.Unlock()
	timeline := make([]codec.RawMessage, len(r.timeline))
	copy(timeline, r.timeline)
	return frozenRoom{
		RoomID:    r.roomID,
		Name:      r.name,
		PrevBatch: r.prevBatch,
		Timeline:  timeline,
	}
}
