// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import (
	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// Snapshot records are deterministic CBOR blobs stored through the
// backing store's custom key-value capability. The session-level
// record lives under the bare storage key; each view's record lives
// under "<storage key>::<view name>". There is no schema versioning:
// bytes that fail to decode are a hard error, never silently skipped.

// frozenSlidingSync is the session-level record: the resumable cursor
// for the whole session.
type frozenSlidingSync struct {
	ToDeviceSince string `cbor:"to_device_since,omitempty"`
	DeltaToken    string `cbor:"delta_token,omitempty"`
}

// frozenView is the per-view record: the view's cursor plus the
// cached payload of every room in its window.
type frozenView struct {
	RoomsCount int                       `cbor:"rooms_count"`
	RoomsList  []ref.RoomID              `cbor:"rooms_list"`
	Rooms      map[ref.RoomID]frozenRoom `cbor:"rooms"`
}

// frozenRoom is the cached payload of one room.
type frozenRoom struct {
	RoomID    ref.RoomID         `cbor:"room_id"`
	Name      string             `cbor:"name,omitempty"`
	PrevBatch string             `cbor:"prev_batch,omitempty"`
	Timeline  []codec.RawMessage `cbor:"timeline,omitempty"`
}

func sessionKey(storageKey string) []byte {
	return []byte(storageKey)
}

func viewKey(storageKey, viewName string) []byte {
	return []byte(storageKey + "::" + viewName)
}
