// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"

	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// Room is one live cached room. Exactly one instance exists per room
// ID per partition; the façade hands out shared pointers, so observed
// metadata stays consistent across all holders.
//
// The embedded StateStore handle is non-owning: a Room invokes the
// backend for read-through lookups but never controls its lifetime.
type Room struct {
	roomID    ref.RoomID
	ownUserID ref.UserID
	store     StateStore

	mu   sync.RWMutex
	info RoomInfo
}

// newRoom creates a Room for the given metadata record.
func newRoom(ownUserID ref.UserID, store StateStore, info RoomInfo) *Room {
	return &Room{
		roomID:    info.RoomID,
		ownUserID: ownUserID,
		store:     store,
		info:      info,
	}
}

// RoomID returns the room's identifier.
func (r *Room) RoomID() ref.RoomID { return r.roomID }

// OwnUserID returns the session user this cached room belongs to.
func (r *Room) OwnUserID() ref.UserID { return r.ownUserID }

// Category returns the local user's current membership category.
func (r *Room) Category() RoomCategory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info.Category
}

// IsInvited reports whether the local user's membership is an
// unaccepted invite.
func (r *Room) IsInvited() bool {
	return r.Category() == CategoryInvited
}

// Info returns a copy of the room's metadata record.
func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// Name returns the room's m.room.name value, or "" if unknown.
func (r *Room) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info.Name
}

// updateInfo replaces the room's metadata record. Called by the façade
// when a changeset carries a newer record for this room.
func (r *Room) updateInfo(info RoomInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = info
}

// Member returns the member event for the given user in this room, or
// nil if none is cached.
func (r *Room) Member(ctx context.Context, userID ref.UserID) (*MemberEvent, error) {
	return r.store.MemberEvent(ctx, r.roomID, userID)
}

// Profile returns the given user's profile in this room, or nil if
// none is cached.
func (r *Room) Profile(ctx context.Context, userID ref.UserID) (*MemberProfile, error) {
	return r.store.Profile(ctx, r.roomID, userID)
}

// JoinedUserIDs returns the members currently in the join state.
func (r *Room) JoinedUserIDs(ctx context.Context) ([]ref.UserID, error) {
	return r.store.JoinedUserIDs(ctx, r.roomID)
}

// InvitedUserIDs returns the members currently in the invite state.
func (r *Room) InvitedUserIDs(ctx context.Context) ([]ref.UserID, error) {
	return r.store.InvitedUserIDs(ctx, r.roomID)
}

// UsersWithDisplayName returns the members sharing the given display
// name in this room, from the collision index.
func (r *Room) UsersWithDisplayName(ctx context.Context, displayName string) ([]ref.UserID, error) {
	return r.store.UsersWithDisplayName(ctx, r.roomID, displayName)
}
