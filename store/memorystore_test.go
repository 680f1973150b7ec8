// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

func TestMemoryStoreFilter(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()

	if err := engine.SaveFilter(ctx, "sync", "filter-id-1"); err != nil {
		t.Fatalf("SaveFilter: %v", err)
	}
	got, err := engine.Filter(ctx, "sync")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if got != "filter-id-1" {
		t.Errorf("Filter = %q, want %q", got, "filter-id-1")
	}

	absent, err := engine.Filter(ctx, "unknown")
	if err != nil {
		t.Fatalf("Filter (absent): %v", err)
	}
	if absent != "" {
		t.Errorf("Filter (absent) = %q, want empty", absent)
	}
}

func TestMemoryStoreCustomValueReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()
	key := []byte("session::view")

	previous, err := engine.SetCustomValue(ctx, key, []byte("first"))
	if err != nil {
		t.Fatalf("SetCustomValue: %v", err)
	}
	if previous != nil {
		t.Errorf("first set returned previous %q, want nil", previous)
	}

	previous, err = engine.SetCustomValue(ctx, key, []byte("second"))
	if err != nil {
		t.Fatalf("SetCustomValue (replace): %v", err)
	}
	if string(previous) != "first" {
		t.Errorf("previous = %q, want %q", previous, "first")
	}

	value, err := engine.CustomValue(ctx, key)
	if err != nil {
		t.Fatalf("CustomValue: %v", err)
	}
	if string(value) != "second" {
		t.Errorf("CustomValue = %q, want %q", value, "second")
	}

	absent, err := engine.CustomValue(ctx, []byte("missing"))
	if err != nil {
		t.Fatalf("CustomValue (absent): %v", err)
	}
	if absent != nil {
		t.Errorf("CustomValue (absent) = %q, want nil", absent)
	}
}

func TestMemoryStoreCustomValueCompressibleRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()

	// Highly repetitive input exercises the zstd path; random-ish
	// short input exercises the incompressible fallback.
	long := bytes.Repeat([]byte(`{"rooms_count":2,"rooms_list":["!a:x"]}`), 200)
	if _, err := engine.SetCustomValue(ctx, []byte("long"), long); err != nil {
		t.Fatalf("SetCustomValue: %v", err)
	}
	got, err := engine.CustomValue(ctx, []byte("long"))
	if err != nil {
		t.Fatalf("CustomValue: %v", err)
	}
	if !bytes.Equal(got, long) {
		t.Error("compressible custom value did not round-trip")
	}

	short := []byte{0x01, 0xfe, 0x9a, 0x42}
	if _, err := engine.SetCustomValue(ctx, []byte("short"), short); err != nil {
		t.Fatalf("SetCustomValue (short): %v", err)
	}
	got, err = engine.CustomValue(ctx, []byte("short"))
	if err != nil {
		t.Fatalf("CustomValue (short): %v", err)
	}
	if !bytes.Equal(got, short) {
		t.Error("incompressible custom value did not round-trip")
	}
}

func TestMemoryStoreReceiptUpsert(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()
	roomID := ref.MustParseRoomID("!room:example.org")
	alice := ref.MustParseUserID("@alice:example.org")
	eventA := ref.MustParseEventID("$a")
	eventB := ref.MustParseEventID("$b")

	changes := NewStateChanges("")
	changes.AddReceipts(roomID, ReceiptContent{
		eventA: {ReceiptTypeRead: {alice: Receipt{Timestamp: 100}}},
	})
	if err := engine.SaveChanges(ctx, changes); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	// The user advances their receipt to a later event.
	changes = NewStateChanges("")
	changes.AddReceipts(roomID, ReceiptContent{
		eventB: {ReceiptTypeRead: {alice: Receipt{Timestamp: 200}}},
	})
	if err := engine.SaveChanges(ctx, changes); err != nil {
		t.Fatalf("SaveChanges (advance): %v", err)
	}

	position, err := engine.UserRoomReceipt(ctx, roomID, ReceiptTypeRead, alice)
	if err != nil {
		t.Fatalf("UserRoomReceipt: %v", err)
	}
	if position == nil || position.EventID != eventB {
		t.Errorf("UserRoomReceipt = %+v, want receipt on %v", position, eventB)
	}

	// The superseded receipt must be gone from the event index.
	stale, err := engine.EventRoomReceipts(ctx, roomID, ReceiptTypeRead, eventA)
	if err != nil {
		t.Fatalf("EventRoomReceipts: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("EventRoomReceipts on old event = %v, want empty", stale)
	}
	current, err := engine.EventRoomReceipts(ctx, roomID, ReceiptTypeRead, eventB)
	if err != nil {
		t.Fatalf("EventRoomReceipts (current): %v", err)
	}
	if len(current) != 1 || current[0].UserID != alice {
		t.Errorf("EventRoomReceipts = %v, want alice's receipt", current)
	}
}

func TestMemoryStoreMediaRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()

	uri := ref.MustParseMxcURI("mxc://example.org/abc123")
	file := &MediaRequest{URI: uri}
	thumbnail := &MediaRequest{URI: uri, Thumbnail: &ThumbnailSize{Width: 64, Height: 64, Method: "crop"}}

	fileContent := bytes.Repeat([]byte("full-resolution"), 100)
	thumbContent := []byte("tiny")

	if err := engine.AddMediaContent(ctx, file, fileContent); err != nil {
		t.Fatalf("AddMediaContent (file): %v", err)
	}
	if err := engine.AddMediaContent(ctx, thumbnail, thumbContent); err != nil {
		t.Fatalf("AddMediaContent (thumbnail): %v", err)
	}

	got, err := engine.MediaContent(ctx, file)
	if err != nil {
		t.Fatalf("MediaContent (file): %v", err)
	}
	if !bytes.Equal(got, fileContent) {
		t.Error("file content did not round-trip")
	}
	got, err = engine.MediaContent(ctx, thumbnail)
	if err != nil {
		t.Fatalf("MediaContent (thumbnail): %v", err)
	}
	if !bytes.Equal(got, thumbContent) {
		t.Error("thumbnail content did not round-trip")
	}

	// Removing one rendition leaves the other.
	if err := engine.RemoveMediaContent(ctx, thumbnail); err != nil {
		t.Fatalf("RemoveMediaContent: %v", err)
	}
	got, err = engine.MediaContent(ctx, thumbnail)
	if err != nil {
		t.Fatalf("MediaContent (removed): %v", err)
	}
	if got != nil {
		t.Error("removed thumbnail still present")
	}

	// Idempotent: removing again is not an error.
	if err := engine.RemoveMediaContent(ctx, thumbnail); err != nil {
		t.Errorf("RemoveMediaContent (repeat): %v", err)
	}

	// URI-wide removal takes the remaining rendition with it.
	if err := engine.RemoveMediaContentForURI(ctx, uri); err != nil {
		t.Fatalf("RemoveMediaContentForURI: %v", err)
	}
	got, err = engine.MediaContent(ctx, file)
	if err != nil {
		t.Fatalf("MediaContent (after URI removal): %v", err)
	}
	if got != nil {
		t.Error("file content survived URI-wide removal")
	}
}

func TestMemoryStoreMediaCacheEviction(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()

	// Fill past the cache bound; the oldest entries must be evicted.
	for i := 0; i < mediaCacheSize+10; i++ {
		uri := ref.MustParseMxcURI("mxc://example.org/media" + string(rune('A'+i%26)) + string(rune('0'+i/26)))
		request := &MediaRequest{URI: uri, Thumbnail: &ThumbnailSize{Width: uint32(i), Height: uint32(i), Method: "scale"}}
		if err := engine.AddMediaContent(ctx, request, []byte("blob")); err != nil {
			t.Fatalf("AddMediaContent(%d): %v", i, err)
		}
	}

	engine.mu.Lock()
	size := len(engine.media)
	engine.mu.Unlock()
	if size != mediaCacheSize {
		t.Errorf("media cache size = %d, want bounded at %d", size, mediaCacheSize)
	}
}

func TestMemoryStoreRemoveRoomCascades(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()
	roomID := ref.MustParseRoomID("!doomed:example.org")
	alice := ref.MustParseUserID("@alice:example.org")

	changes := NewStateChanges("")
	changes.AddRoom(RoomInfo{RoomID: roomID, Category: CategoryJoined})
	changes.AddStateEvent(roomID, ref.EventTypeName, "", codec.RawMessage(`{"name":"doomed"}`))
	changes.AddMemberEvent(roomID, MemberEvent{UserID: alice, Membership: MembershipJoin})
	changes.AddProfile(roomID, alice, MemberProfile{DisplayName: "Alice"})
	changes.AddRoomAccountData(roomID, "m.tag", codec.RawMessage(`{}`))
	changes.AddReceipts(roomID, ReceiptContent{
		ref.MustParseEventID("$e"): {ReceiptTypeRead: {alice: Receipt{Timestamp: 1}}},
	})
	changes.AddTimeline(roomID, TimelineSlice{
		Start:  "s1",
		End:    "e1",
		Events: []TimelineEvent{{EventID: ref.MustParseEventID("$e"), Raw: codec.RawMessage(`{}`)}},
	})
	if err := engine.SaveChanges(ctx, changes); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	if err := engine.RemoveRoom(ctx, roomID); err != nil {
		t.Fatalf("RemoveRoom: %v", err)
	}

	if raw, _ := engine.StateEvent(ctx, roomID, ref.EventTypeName, ""); raw != nil {
		t.Error("state event survived room removal")
	}
	if event, _ := engine.MemberEvent(ctx, roomID, alice); event != nil {
		t.Error("member event survived room removal")
	}
	if profile, _ := engine.Profile(ctx, roomID, alice); profile != nil {
		t.Error("profile survived room removal")
	}
	if raw, _ := engine.RoomAccountData(ctx, roomID, "m.tag"); raw != nil {
		t.Error("room account data survived room removal")
	}
	if position, _ := engine.UserRoomReceipt(ctx, roomID, ReceiptTypeRead, alice); position != nil {
		t.Error("receipt survived room removal")
	}
	if stream, _, _ := engine.RoomTimeline(ctx, roomID); stream != nil {
		t.Error("timeline survived room removal")
	}
	infos, _ := engine.RoomInfos(ctx)
	if len(infos) != 0 {
		t.Errorf("RoomInfos = %v, want empty after removal", infos)
	}

	// Idempotent: removing an absent room is not an error.
	if err := engine.RemoveRoom(ctx, roomID); err != nil {
		t.Errorf("RemoveRoom (repeat): %v", err)
	}
}

func TestMemoryStoreTimelineStream(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()
	roomID := ref.MustParseRoomID("!room:example.org")

	changes := NewStateChanges("")
	changes.AddTimeline(roomID, TimelineSlice{
		Start: "s1",
		End:   "prev-batch-1",
		Events: []TimelineEvent{
			{EventID: ref.MustParseEventID("$1"), Raw: codec.RawMessage(`{"n":1}`)},
			{EventID: ref.MustParseEventID("$2"), Raw: codec.RawMessage(`{"n":2}`)},
		},
	})
	if err := engine.SaveChanges(ctx, changes); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	stream, prevBatch, err := engine.RoomTimeline(ctx, roomID)
	if err != nil {
		t.Fatalf("RoomTimeline: %v", err)
	}
	if prevBatch != "prev-batch-1" {
		t.Errorf("prevBatch = %q, want %q", prevBatch, "prev-batch-1")
	}

	var seen []ref.EventID
	for {
		event, err := stream.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if event == nil {
			break
		}
		seen = append(seen, event.EventID)
	}
	if len(seen) != 2 || seen[0] != ref.MustParseEventID("$1") || seen[1] != ref.MustParseEventID("$2") {
		t.Errorf("stream events = %v, want [$1 $2] in order", seen)
	}

	// Restartable: a fresh call yields a fresh stream from the start.
	stream, _, err = engine.RoomTimeline(ctx, roomID)
	if err != nil {
		t.Fatalf("RoomTimeline (restart): %v", err)
	}
	event, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("Next (restart): %v", err)
	}
	if event == nil || event.EventID != ref.MustParseEventID("$1") {
		t.Errorf("restarted stream first event = %+v, want $1", event)
	}

	// Absent timeline: nil stream, empty token, nil error.
	stream, prevBatch, err = engine.RoomTimeline(ctx, ref.MustParseRoomID("!other:example.org"))
	if err != nil {
		t.Fatalf("RoomTimeline (absent): %v", err)
	}
	if stream != nil || prevBatch != "" {
		t.Errorf("absent timeline = (%v, %q), want (nil, \"\")", stream, prevBatch)
	}
}

func TestMemoryStoreTimelineLimitedResets(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryStore()
	roomID := ref.MustParseRoomID("!room:example.org")

	changes := NewStateChanges("")
	changes.AddTimeline(roomID, TimelineSlice{
		End:    "pb-1",
		Events: []TimelineEvent{{EventID: ref.MustParseEventID("$old"), Raw: codec.RawMessage(`{}`)}},
	})
	if err := engine.SaveChanges(ctx, changes); err != nil {
		t.Fatalf("SaveChanges: %v", err)
	}

	// A limited slice breaks contiguity: prior events are dropped.
	changes = NewStateChanges("")
	changes.AddTimeline(roomID, TimelineSlice{
		End:     "pb-2",
		Limited: true,
		Events:  []TimelineEvent{{EventID: ref.MustParseEventID("$new"), Raw: codec.RawMessage(`{}`)}},
	})
	if err := engine.SaveChanges(ctx, changes); err != nil {
		t.Fatalf("SaveChanges (limited): %v", err)
	}

	stream, prevBatch, err := engine.RoomTimeline(ctx, roomID)
	if err != nil {
		t.Fatalf("RoomTimeline: %v", err)
	}
	if prevBatch != "pb-2" {
		t.Errorf("prevBatch = %q, want token of the limited slice", prevBatch)
	}
	event, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if event == nil || event.EventID != ref.MustParseEventID("$new") {
		t.Errorf("first event = %+v, want $new (old events dropped)", event)
	}
	if next, _ := stream.Next(ctx); next != nil {
		t.Errorf("second event = %+v, want end of stream", next)
	}
}

func TestMediaRequestCacheKey(t *testing.T) {
	uri := ref.MustParseMxcURI("mxc://example.org/abc")
	file := &MediaRequest{URI: uri}
	thumb := &MediaRequest{URI: uri, Thumbnail: &ThumbnailSize{Width: 32, Height: 32, Method: "crop"}}

	if file.CacheKey() != (&MediaRequest{URI: uri}).CacheKey() {
		t.Error("identical requests produced different cache keys")
	}
	if file.CacheKey() == thumb.CacheKey() {
		t.Error("file and thumbnail renditions share a cache key")
	}

	other := &MediaRequest{URI: ref.MustParseMxcURI("mxc://example.org/def")}
	if file.CacheKey() == other.CacheKey() {
		t.Error("different URIs share a cache key")
	}
}
