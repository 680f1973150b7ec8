// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// StateChanges batches the heterogeneous diffs of one sync cycle for
// atomic application through StateStore.SaveChanges. It is a transient
// in-memory aggregate: built by sync response processing, handed to
// the backend whole, then discarded. Nothing here performs I/O or
// reads current backend state — reconciling with already-persisted
// data is entirely the backend's job.
//
// All Add methods are keyed upserts on the payload's natural identity.
// Within one changeset, repeated upserts to the same key retain only
// the last value; insertion order is irrelevant.
type StateChanges struct {
	// SyncToken is the sync position this batch corresponds to.
	// Empty means the batch does not advance the token.
	SyncToken string

	// Session, when set, replaces the persisted session record.
	Session *Session

	// AccountData maps global account data event types to payloads.
	AccountData map[ref.EventType]codec.RawMessage

	// Presence maps users to their latest presence event.
	Presence map[ref.UserID]codec.RawMessage

	// Filters maps filter names to server-assigned filter IDs.
	Filters map[string]string

	// Members and Profiles map room → user → value for confirmed
	// rooms.
	Members  map[ref.RoomID]map[ref.UserID]MemberEvent
	Profiles map[ref.RoomID]map[ref.UserID]MemberProfile

	// State maps room → event type → state key → payload.
	State map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage

	// RoomAccountData maps room → event type → payload.
	RoomAccountData map[ref.RoomID]map[ref.EventType]codec.RawMessage

	// RoomInfos holds updated metadata records for confirmed rooms.
	RoomInfos map[ref.RoomID]RoomInfo

	// Receipts holds one m.receipt event body per room.
	Receipts map[ref.RoomID]ReceiptContent

	// StrippedState, StrippedMembers, and StrippedRoomInfos are the
	// invite-preview counterparts of State, Members, and RoomInfos.
	StrippedState     map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage
	StrippedMembers   map[ref.RoomID]map[ref.UserID]StrippedMemberEvent
	StrippedRoomInfos map[ref.RoomID]RoomInfo

	// AmbiguityMaps maps room → display name → set of users sharing
	// that name. Maintained by the collision index upstream; carried
	// opaquely here.
	AmbiguityMaps map[ref.RoomID]map[string]map[ref.UserID]struct{}

	// Notifications collects push notifications per room. Unlike the
	// keyed maps above, these append: each sync cycle may carry
	// several notifications for one room.
	Notifications map[ref.RoomID][]Notification

	// Timeline maps room → the timeline slice this cycle produced.
	Timeline map[ref.RoomID]TimelineSlice
}

// NewStateChanges creates an empty changeset positioned at the given
// sync token.
func NewStateChanges(syncToken string) *StateChanges {
	return &StateChanges{SyncToken: syncToken}
}

// AddPresenceEvent records the latest presence event for a user.
func (c *StateChanges) AddPresenceEvent(userID ref.UserID, raw codec.RawMessage) {
	if c.Presence == nil {
		c.Presence = make(map[ref.UserID]codec.RawMessage)
	}
	c.Presence[userID] = raw
}

// AddRoom records updated metadata for a confirmed room.
func (c *StateChanges) AddRoom(info RoomInfo) {
	if c.RoomInfos == nil {
		c.RoomInfos = make(map[ref.RoomID]RoomInfo)
	}
	c.RoomInfos[info.RoomID] = info
}

// AddStrippedRoom records updated metadata for a stripped room.
func (c *StateChanges) AddStrippedRoom(info RoomInfo) {
	if c.StrippedRoomInfos == nil {
		c.StrippedRoomInfos = make(map[ref.RoomID]RoomInfo)
	}
	c.StrippedRoomInfos[info.RoomID] = info
}

// AddAccountData records a global account data event by its type.
func (c *StateChanges) AddAccountData(eventType ref.EventType, raw codec.RawMessage) {
	if c.AccountData == nil {
		c.AccountData = make(map[ref.EventType]codec.RawMessage)
	}
	c.AccountData[eventType] = raw
}

// AddRoomAccountData records a per-room account data event.
func (c *StateChanges) AddRoomAccountData(roomID ref.RoomID, eventType ref.EventType, raw codec.RawMessage) {
	if c.RoomAccountData == nil {
		c.RoomAccountData = make(map[ref.RoomID]map[ref.EventType]codec.RawMessage)
	}
	perRoom := c.RoomAccountData[roomID]
	if perRoom == nil {
		perRoom = make(map[ref.EventType]codec.RawMessage)
		c.RoomAccountData[roomID] = perRoom
	}
	perRoom[eventType] = raw
}

// AddFilter records a server-assigned filter ID under its name.
func (c *StateChanges) AddFilter(name, filterID string) {
	if c.Filters == nil {
		c.Filters = make(map[string]string)
	}
	c.Filters[name] = filterID
}

// AddStateEvent records a state event keyed by room, type, and state
// key.
func (c *StateChanges) AddStateEvent(roomID ref.RoomID, eventType ref.EventType, stateKey string, raw codec.RawMessage) {
	if c.State == nil {
		c.State = make(map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage)
	}
	perRoom := c.State[roomID]
	if perRoom == nil {
		perRoom = make(map[ref.EventType]map[string]codec.RawMessage)
		c.State[roomID] = perRoom
	}
	perType := perRoom[eventType]
	if perType == nil {
		perType = make(map[string]codec.RawMessage)
		perRoom[eventType] = perType
	}
	perType[stateKey] = raw
}

// AddStrippedStateEvent records an invite-preview state event keyed by
// room, type, and state key.
func (c *StateChanges) AddStrippedStateEvent(roomID ref.RoomID, eventType ref.EventType, stateKey string, raw codec.RawMessage) {
	if c.StrippedState == nil {
		c.StrippedState = make(map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage)
	}
	perRoom := c.StrippedState[roomID]
	if perRoom == nil {
		perRoom = make(map[ref.EventType]map[string]codec.RawMessage)
		c.StrippedState[roomID] = perRoom
	}
	perType := perRoom[eventType]
	if perType == nil {
		perType = make(map[string]codec.RawMessage)
		perRoom[eventType] = perType
	}
	perType[stateKey] = raw
}

// AddMemberEvent records a member event for a confirmed room, keyed by
// the member's user ID.
func (c *StateChanges) AddMemberEvent(roomID ref.RoomID, event MemberEvent) {
	if c.Members == nil {
		c.Members = make(map[ref.RoomID]map[ref.UserID]MemberEvent)
	}
	perRoom := c.Members[roomID]
	if perRoom == nil {
		perRoom = make(map[ref.UserID]MemberEvent)
		c.Members[roomID] = perRoom
	}
	perRoom[event.UserID] = event
}

// AddProfile records a user's profile in a room.
func (c *StateChanges) AddProfile(roomID ref.RoomID, userID ref.UserID, profile MemberProfile) {
	if c.Profiles == nil {
		c.Profiles = make(map[ref.RoomID]map[ref.UserID]MemberProfile)
	}
	perRoom := c.Profiles[roomID]
	if perRoom == nil {
		perRoom = make(map[ref.UserID]MemberProfile)
		c.Profiles[roomID] = perRoom
	}
	perRoom[userID] = profile
}

// AddStrippedMember records an invite-preview member event, keyed by
// the member's user ID.
func (c *StateChanges) AddStrippedMember(roomID ref.RoomID, event StrippedMemberEvent) {
	if c.StrippedMembers == nil {
		c.StrippedMembers = make(map[ref.RoomID]map[ref.UserID]StrippedMemberEvent)
	}
	perRoom := c.StrippedMembers[roomID]
	if perRoom == nil {
		perRoom = make(map[ref.UserID]StrippedMemberEvent)
		c.StrippedMembers[roomID] = perRoom
	}
	perRoom[event.UserID] = event
}

// AddAmbiguityMap records the set of users sharing each display name
// in a room.
func (c *StateChanges) AddAmbiguityMap(roomID ref.RoomID, displayName string, users map[ref.UserID]struct{}) {
	if c.AmbiguityMaps == nil {
		c.AmbiguityMaps = make(map[ref.RoomID]map[string]map[ref.UserID]struct{})
	}
	perRoom := c.AmbiguityMaps[roomID]
	if perRoom == nil {
		perRoom = make(map[string]map[ref.UserID]struct{})
		c.AmbiguityMaps[roomID] = perRoom
	}
	perRoom[displayName] = users
}

// AddNotification appends a push notification for a room.
func (c *StateChanges) AddNotification(roomID ref.RoomID, notification Notification) {
	if c.Notifications == nil {
		c.Notifications = make(map[ref.RoomID][]Notification)
	}
	c.Notifications[roomID] = append(c.Notifications[roomID], notification)
}

// AddReceipts records the m.receipt event body for a room.
func (c *StateChanges) AddReceipts(roomID ref.RoomID, content ReceiptContent) {
	if c.Receipts == nil {
		c.Receipts = make(map[ref.RoomID]ReceiptContent)
	}
	c.Receipts[roomID] = content
}

// AddTimeline records the timeline slice for a room.
func (c *StateChanges) AddTimeline(roomID ref.RoomID, slice TimelineSlice) {
	if c.Timeline == nil {
		c.Timeline = make(map[ref.RoomID]TimelineSlice)
	}
	c.Timeline[roomID] = slice
}
