// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// StateStore is the capability contract a storage engine must
// implement to back the room cache. Implementations are interchangeable
// behind [Store] — the in-memory reference engine in this package, or
// persistent engines provided outside this module.
//
// Every operation takes a context and may suspend; callers must not
// assume synchronous completion. Every read distinguishes absence from
// failure: a missing record is a zero result (nil pointer, nil slice,
// empty string) with a nil error, never an error. Removal operations
// are idempotent — removing an absent room or blob succeeds.
//
// SaveChanges applies one [StateChanges] batch atomically under the
// backend's own transaction discipline: the whole changeset is visible
// afterwards, or none of it is.
type StateStore interface {
	// SaveFilter persists a filter ID under the given name.
	SaveFilter(ctx context.Context, name, filterID string) error

	// Filter returns the filter ID stored under name, or "" if none.
	Filter(ctx context.Context, name string) (string, error)

	// SaveChanges applies the changeset as a whole or not at all.
	SaveChanges(ctx context.Context, changes *StateChanges) error

	// SyncToken returns the last persisted sync token, or "" if none.
	SyncToken(ctx context.Context) (string, error)

	// PresenceEvent returns the stored presence event for the user,
	// or nil if none.
	PresenceEvent(ctx context.Context, userID ref.UserID) (codec.RawMessage, error)

	// StateEvent returns the state event with the given type and
	// state key in the room, or nil if none.
	StateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (codec.RawMessage, error)

	// StateEvents returns all state events of the given type in the
	// room. Order is unspecified.
	StateEvents(ctx context.Context, roomID ref.RoomID, eventType ref.EventType) ([]codec.RawMessage, error)

	// Profile returns the user's current profile in the room, or nil
	// if none.
	Profile(ctx context.Context, roomID ref.RoomID, userID ref.UserID) (*MemberProfile, error)

	// MemberEvent returns the member event whose state key is userID,
	// or nil if none.
	MemberEvent(ctx context.Context, roomID ref.RoomID, userID ref.UserID) (*MemberEvent, error)

	// UserIDs returns the IDs of all known members of the room.
	UserIDs(ctx context.Context, roomID ref.RoomID) ([]ref.UserID, error)

	// JoinedUserIDs returns the IDs of members in the join state.
	JoinedUserIDs(ctx context.Context, roomID ref.RoomID) ([]ref.UserID, error)

	// InvitedUserIDs returns the IDs of members in the invite state.
	InvitedUserIDs(ctx context.Context, roomID ref.RoomID) ([]ref.UserID, error)

	// RoomInfos returns the metadata records of all confirmed rooms.
	RoomInfos(ctx context.Context) ([]RoomInfo, error)

	// StrippedRoomInfos returns the metadata records of all stripped
	// (invite-preview) rooms.
	StrippedRoomInfos(ctx context.Context) ([]RoomInfo, error)

	// UsersWithDisplayName returns the users sharing the given
	// display name in the room. The collision index behind this is
	// maintained elsewhere; the store only serves lookups.
	UsersWithDisplayName(ctx context.Context, roomID ref.RoomID, displayName string) ([]ref.UserID, error)

	// AccountData returns the global account data event of the given
	// type, or nil if none.
	AccountData(ctx context.Context, eventType ref.EventType) (codec.RawMessage, error)

	// RoomAccountData returns the per-room account data event of the
	// given type, or nil if none.
	RoomAccountData(ctx context.Context, roomID ref.RoomID, eventType ref.EventType) (codec.RawMessage, error)

	// UserRoomReceipt returns the user's latest receipt of the given
	// type in the room, or nil if none.
	UserRoomReceipt(ctx context.Context, roomID ref.RoomID, receiptType ReceiptType, userID ref.UserID) (*ReceiptPosition, error)

	// EventRoomReceipts returns all receipts of the given type on the
	// event. Order is unspecified.
	EventRoomReceipts(ctx context.Context, roomID ref.RoomID, receiptType ReceiptType, eventID ref.EventID) ([]UserReceipt, error)

	// CustomValue returns the opaque value stored under key, or nil
	// if none.
	CustomValue(ctx context.Context, key []byte) ([]byte, error)

	// SetCustomValue stores an opaque value under key and returns the
	// previous value, or nil if there was none.
	SetCustomValue(ctx context.Context, key, value []byte) ([]byte, error)

	// AddMediaContent stores a media blob under the request
	// descriptor, replacing any existing blob for the same request.
	AddMediaContent(ctx context.Context, request *MediaRequest, content []byte) error

	// MediaContent returns the blob stored for the request, or nil if
	// none.
	MediaContent(ctx context.Context, request *MediaRequest) ([]byte, error)

	// RemoveMediaContent removes the blob stored for the request.
	// Removing an absent blob is not an error.
	RemoveMediaContent(ctx context.Context, request *MediaRequest) error

	// RemoveMediaContentForURI removes every rendition stored for the
	// content URI. Removing an absent URI is not an error.
	RemoveMediaContentForURI(ctx context.Context, uri ref.MxcURI) error

	// RemoveRoom removes the room and cascades over all associated
	// state: metadata, state events, members, profiles, receipts,
	// account data, display names, and cached timeline. Removing an
	// absent room is not an error.
	RemoveRoom(ctx context.Context, roomID ref.RoomID) error

	// RoomTimeline returns a lazy stream over the cached timeline of
	// the room plus the pagination token for requesting earlier
	// events, or (nil, "", nil) when no timeline is cached. The
	// stream is a snapshot: restarting RoomTimeline yields a fresh
	// stream from the beginning.
	RoomTimeline(ctx context.Context, roomID ref.RoomID) (TimelineStream, string, error)
}

// TimelineStream is a lazy sequence of cached timeline events. Next
// may suspend; it returns (nil, nil) after the last event.
type TimelineStream interface {
	Next(ctx context.Context) (*TimelineEvent, error)
}
