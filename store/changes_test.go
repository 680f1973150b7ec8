// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"testing"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

func TestAddStateEventLastWriteWins(t *testing.T) {
	roomID := ref.MustParseRoomID("!room:example.org")
	changes := NewStateChanges("token-1")

	first := codec.RawMessage(`{"name":"old"}`)
	second := codec.RawMessage(`{"name":"new"}`)
	changes.AddStateEvent(roomID, ref.EventTypeName, "", first)
	changes.AddStateEvent(roomID, ref.EventTypeName, "", second)

	got := changes.State[roomID][ref.EventTypeName][""]
	if !bytes.Equal(got, second) {
		t.Errorf("state event = %s, want last-applied value %s", got, second)
	}
	if len(changes.State[roomID][ref.EventTypeName]) != 1 {
		t.Errorf("state key count = %d, want 1", len(changes.State[roomID][ref.EventTypeName]))
	}
}

func TestAddStateEventDistinctKeys(t *testing.T) {
	roomID := ref.MustParseRoomID("!room:example.org")
	changes := NewStateChanges("")

	changes.AddStateEvent(roomID, ref.EventTypeMember, "@a:example.org", codec.RawMessage(`{}`))
	changes.AddStateEvent(roomID, ref.EventTypeMember, "@b:example.org", codec.RawMessage(`{}`))
	changes.AddStateEvent(roomID, ref.EventTypeName, "", codec.RawMessage(`{}`))

	if got := len(changes.State[roomID][ref.EventTypeMember]); got != 2 {
		t.Errorf("member state keys = %d, want 2", got)
	}
	if got := len(changes.State[roomID]); got != 2 {
		t.Errorf("event types = %d, want 2", got)
	}
}

func TestAddRoomUpsertsByRoomID(t *testing.T) {
	roomID := ref.MustParseRoomID("!room:example.org")
	changes := NewStateChanges("")

	changes.AddRoom(RoomInfo{RoomID: roomID, Category: CategoryJoined, Name: "old"})
	changes.AddRoom(RoomInfo{RoomID: roomID, Category: CategoryJoined, Name: "new"})

	if len(changes.RoomInfos) != 1 {
		t.Fatalf("room info count = %d, want 1", len(changes.RoomInfos))
	}
	if got := changes.RoomInfos[roomID].Name; got != "new" {
		t.Errorf("room name = %q, want %q", got, "new")
	}
}

func TestAddStrippedMemberKeyedByUser(t *testing.T) {
	roomID := ref.MustParseRoomID("!room:example.org")
	alice := ref.MustParseUserID("@alice:example.org")
	changes := NewStateChanges("")

	changes.AddStrippedMember(roomID, StrippedMemberEvent{UserID: alice, Membership: MembershipInvite})
	changes.AddStrippedMember(roomID, StrippedMemberEvent{UserID: alice, Membership: MembershipJoin})

	if len(changes.StrippedMembers[roomID]) != 1 {
		t.Fatalf("stripped member count = %d, want 1", len(changes.StrippedMembers[roomID]))
	}
	if got := changes.StrippedMembers[roomID][alice].Membership; got != MembershipJoin {
		t.Errorf("membership = %q, want last-applied %q", got, MembershipJoin)
	}
}

func TestAddNotificationAppends(t *testing.T) {
	roomID := ref.MustParseRoomID("!room:example.org")
	changes := NewStateChanges("")

	changes.AddNotification(roomID, Notification{Timestamp: 1})
	changes.AddNotification(roomID, Notification{Timestamp: 2})

	if got := len(changes.Notifications[roomID]); got != 2 {
		t.Errorf("notification count = %d, want 2 (notifications append, not upsert)", got)
	}
}

func TestAddPresenceEventKeyedBySender(t *testing.T) {
	alice := ref.MustParseUserID("@alice:example.org")
	changes := NewStateChanges("")

	changes.AddPresenceEvent(alice, codec.RawMessage(`{"presence":"online"}`))
	changes.AddPresenceEvent(alice, codec.RawMessage(`{"presence":"offline"}`))

	if len(changes.Presence) != 1 {
		t.Fatalf("presence count = %d, want 1", len(changes.Presence))
	}
	if !bytes.Contains(changes.Presence[alice], []byte("offline")) {
		t.Errorf("presence = %s, want last-applied event", changes.Presence[alice])
	}
}
