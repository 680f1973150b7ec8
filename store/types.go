// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// Session identifies the logged-in account the cache belongs to. It is
// required before any Room object can be created: member lookups and
// display-name resolution are relative to the session's own user ID.
type Session struct {
	UserID      ref.UserID `json:"user_id"`
	AccessToken string     `json:"access_token"`
	DeviceID    string     `json:"device_id,omitempty"`
}

// RoomCategory is the local user's membership category for a room. It
// determines which partition of the room cache holds the room: joined
// and left rooms carry full state (confirmed partition), invited rooms
// carry only the stripped invite preview.
type RoomCategory uint8

const (
	CategoryJoined RoomCategory = iota
	CategoryLeft
	CategoryInvited
)

// String returns the human-readable category name.
func (c RoomCategory) String() string {
	switch c {
	case CategoryJoined:
		return "joined"
	case CategoryLeft:
		return "left"
	case CategoryInvited:
		return "invited"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// RoomInfo is the persistent per-room metadata record. It is the unit
// the backend stores per room and the façade materializes a live Room
// from on session restore.
type RoomInfo struct {
	RoomID   ref.RoomID   `json:"room_id"`
	Category RoomCategory `json:"category"`

	// Name is the m.room.name value, if known. Empty rooms fall back
	// to calculated names at a higher layer.
	Name string `json:"name,omitempty"`

	// MemberCount is the joined member count reported by the server.
	MemberCount uint64 `json:"member_count,omitempty"`

	// PrevBatch is the pagination token preceding the oldest cached
	// timeline event for the room.
	PrevBatch string `json:"prev_batch,omitempty"`
}

// Membership is the raw membership value from an m.room.member event.
type Membership string

const (
	MembershipJoin   Membership = "join"
	MembershipLeave  Membership = "leave"
	MembershipInvite Membership = "invite"
	MembershipBan    Membership = "ban"
	MembershipKnock  Membership = "knock"
)

// MemberProfile is the displayed identity a user carries in one room.
type MemberProfile struct {
	DisplayName string     `json:"displayname,omitempty"`
	AvatarURL   ref.MxcURI `json:"avatar_url,omitempty"`
}

// MemberEvent is a cached m.room.member state event for a confirmed
// room, keyed by room and state-key user.
type MemberEvent struct {
	UserID     ref.UserID `json:"user_id"`
	Sender     ref.UserID `json:"sender,omitempty"`
	Membership Membership `json:"membership"`
	Profile    MemberProfile
}

// StrippedMemberEvent is the invite-preview form of a member event:
// the same identity fields without a full event envelope around them.
type StrippedMemberEvent struct {
	UserID     ref.UserID `json:"user_id"`
	Membership Membership `json:"membership"`
	Profile    MemberProfile
}

// ReceiptType distinguishes read receipt channels.
type ReceiptType string

const (
	ReceiptTypeRead        ReceiptType = "m.read"
	ReceiptTypeReadPrivate ReceiptType = "m.read.private"
)

// Receipt is the payload of a single read receipt.
type Receipt struct {
	Timestamp int64 `json:"ts,omitempty"`
}

// ReceiptPosition is a user's latest receipt in a room: the event it
// points at plus the receipt payload.
type ReceiptPosition struct {
	EventID ref.EventID
	Receipt Receipt
}

// UserReceipt pairs a user with their receipt on a specific event.
type UserReceipt struct {
	UserID  ref.UserID
	Receipt Receipt
}

// ReceiptContent is the body of one m.receipt ephemeral event:
// event → receipt type → user → receipt.
type ReceiptContent map[ref.EventID]map[ReceiptType]map[ref.UserID]Receipt

// Notification is a push notification recorded for a room. The event
// payload stays opaque — the store never interprets event content.
type Notification struct {
	Event     codec.RawMessage `json:"event"`
	Read      bool             `json:"read"`
	Timestamp int64            `json:"ts"`
}

// TimelineEvent is one cached timeline event: its ID for receipt and
// redaction addressing, plus the verbatim payload.
type TimelineEvent struct {
	EventID ref.EventID      `json:"event_id"`
	Raw     codec.RawMessage `json:"raw"`
}

// TimelineSlice is a contiguous run of timeline events from one sync
// response, bounded by the pagination tokens the server issued for it.
type TimelineSlice struct {
	// Start is the token at the newest edge of the slice; End is the
	// token for paginating further into the past.
	Start string `json:"start"`
	End   string `json:"end,omitempty"`

	// Limited reports that the server elided events between this
	// slice and the previously synced timeline. Cached events older
	// than the gap are no longer contiguous and must be dropped.
	Limited bool `json:"limited,omitempty"`

	Events []TimelineEvent `json:"events"`
}
