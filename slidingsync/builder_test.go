// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import (
	"context"
	"testing"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
	"github.com/bjorn-ove/matrix-sdk-go/store"
)

func mustView(t *testing.T, name string) *View {
	t.Helper()
	view, err := NewViewBuilder(name).Build()
	if err != nil {
		t.Fatalf("building view %q: %v", name, err)
	}
	return view
}

// seedSnapshot writes a frozen record under the given key, the way
// Persist does.
func seedSnapshot(t *testing.T, backing *store.Store, key []byte, record any) {
	t.Helper()
	raw, err := codec.Marshal(record)
	if err != nil {
		t.Fatalf("encoding snapshot: %v", err)
	}
	if _, err := backing.SetCustomValue(context.Background(), key, raw); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}
}

func TestBuildColdWithoutStorageKey(t *testing.T) {
	session, err := NewBuilder(store.OpenMemoryStore()).
		AddView(mustView(t, "all")).
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(session.Rooms()) != 0 {
		t.Error("cold session has cached rooms")
	}
	if session.DeltaToken().Get() != "" {
		t.Error("cold session has a delta token")
	}
	if session.View("all") == nil {
		t.Error("configured view missing from session")
	}
}

func TestBuildMissingRecordsIsNotAnError(t *testing.T) {
	session, err := NewBuilder(store.OpenMemoryStore()).
		StorageKey("main").
		AddView(mustView(t, "all")).
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build with empty cache: %v", err)
	}
	if len(session.Rooms()) != 0 || session.DeltaToken().Get() != "" {
		t.Error("empty cache produced non-default session state")
	}
	if view := session.View("all"); view.RoomsCount() != 0 || len(view.RoomsList()) != 0 {
		t.Error("empty cache produced a non-default view cursor")
	}
}

func TestBuildRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	backing := store.OpenMemoryStore()
	roomA := ref.MustParseRoomID("!a:example.org")
	roomB := ref.MustParseRoomID("!b:example.org")

	seedSnapshot(t, backing, viewKey("main", "all"), frozenView{
		RoomsCount: 2,
		RoomsList:  []ref.RoomID{roomA, roomB},
		Rooms: map[ref.RoomID]frozenRoom{
			roomA: {
				RoomID:    roomA,
				Name:      "Alpha",
				PrevBatch: "pb-a",
				Timeline:  []codec.RawMessage{mustCBOR(t, map[string]any{"n": 1})},
			},
		},
	})
	seedSnapshot(t, backing, sessionKey("main"), frozenSlidingSync{
		ToDeviceSince: "tok1",
		DeltaToken:    "dt1",
	})

	session, err := NewBuilder(backing).
		StorageKey("main").
		AddView(mustView(t, "all")).
		WithToDeviceExtension(ToDeviceConfig{Enabled: enabled()}).
		Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	view := session.View("all")
	if view.RoomsCount() != 2 {
		t.Errorf("RoomsCount = %d, want 2", view.RoomsCount())
	}
	if list := view.RoomsList(); len(list) != 2 || list[0] != roomA || list[1] != roomB {
		t.Errorf("RoomsList = %v, want [%v %v]", list, roomA, roomB)
	}
	room := session.Room(roomA)
	if room == nil {
		t.Fatal("restored room missing from session room map")
	}
	if room.Name() != "Alpha" || room.PrevBatch() != "pb-a" || len(room.Timeline()) != 1 {
		t.Errorf("restored room = {%q %q %d events}", room.Name(), room.PrevBatch(), len(room.Timeline()))
	}
	if session.Room(roomB) != nil {
		t.Error("room without a frozen payload appeared in the room map")
	}
	if got := session.DeltaToken().Get(); got != "dt1" {
		t.Errorf("delta token = %q, want %q", got, "dt1")
	}
	if since := session.Extensions().ToDevice.Since; since != "tok1" {
		t.Errorf("to-device since = %q, want injected %q", since, "tok1")
	}
}

// When the same room is cached by several views, the earliest
// configured view's payload wins.
func TestBuildFirstWriterWinsAcrossViews(t *testing.T) {
	ctx := context.Background()
	backing := store.OpenMemoryStore()
	shared := ref.MustParseRoomID("!shared:example.org")

	for viewName, roomName := range map[string]string{"first": "From First", "second": "From Second"} {
		seedSnapshot(t, backing, viewKey("main", viewName), frozenView{
			RoomsCount: 1,
			RoomsList:  []ref.RoomID{shared},
			Rooms: map[ref.RoomID]frozenRoom{
				shared: {RoomID: shared, Name: roomName},
			},
		})
	}

	session, err := NewBuilder(backing).
		StorageKey("main").
		AddView(mustView(t, "first")).
		AddView(mustView(t, "second")).
		Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if name := session.Room(shared).Name(); name != "From First" {
		t.Errorf("shared room name = %q, want the first view's payload", name)
	}
}

// A persisted since token must not conjure up a to-device extension
// the caller never configured.
func TestBuildDoesNotCreateToDeviceExtension(t *testing.T) {
	ctx := context.Background()
	backing := store.OpenMemoryStore()
	seedSnapshot(t, backing, sessionKey("main"), frozenSlidingSync{
		ToDeviceSince: "tok1",
		DeltaToken:    "dt1",
	})

	session, err := NewBuilder(backing).StorageKey("main").Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if session.Extensions().ToDevice != nil {
		t.Error("since token created a to-device extension")
	}
	if got := session.DeltaToken().Get(); got != "dt1" {
		t.Errorf("delta token = %q, want %q installed regardless of extensions", got, "dt1")
	}
}

func TestBuildAbortsOnUndecodableSnapshot(t *testing.T) {
	ctx := context.Background()
	backing := store.OpenMemoryStore()
	garbage := []byte{0xff, 0x00, 0xfe}
	if _, err := backing.SetCustomValue(ctx, viewKey("main", "all"), garbage); err != nil {
		t.Fatalf("seeding garbage: %v", err)
	}

	view := mustView(t, "all")
	_, err := NewBuilder(backing).StorageKey("main").AddView(view).Build(ctx)
	if err == nil {
		t.Fatal("Build decoded garbage without error")
	}
	if !store.IsKind(err, store.KindCodec) {
		t.Errorf("error kind = %v, want codec", err)
	}

	// The failed bootstrap must not have touched the cache.
	stored, err := backing.CustomValue(ctx, viewKey("main", "all"))
	if err != nil {
		t.Fatalf("CustomValue: %v", err)
	}
	if string(stored) != string(garbage) {
		t.Error("failed bootstrap mutated the persisted cache")
	}
}

// An aborted bootstrap must discard all work gathered so far: a view
// whose snapshot decoded cleanly keeps its default cursor when a later
// view's snapshot turns out to be garbage.
func TestBuildAbortLeavesEarlierViewsUntouched(t *testing.T) {
	ctx := context.Background()
	backing := store.OpenMemoryStore()
	roomA := ref.MustParseRoomID("!a:example.org")

	seedSnapshot(t, backing, viewKey("main", "v1"), frozenView{
		RoomsCount: 7,
		RoomsList:  []ref.RoomID{roomA},
		Rooms: map[ref.RoomID]frozenRoom{
			roomA: {RoomID: roomA, Name: "Alpha"},
		},
	})
	if _, err := backing.SetCustomValue(ctx, viewKey("main", "v2"), []byte{0xff, 0x00}); err != nil {
		t.Fatalf("seeding garbage: %v", err)
	}

	v1 := mustView(t, "v1")
	v2 := mustView(t, "v2")
	_, err := NewBuilder(backing).
		StorageKey("main").
		AddView(v1).
		AddView(v2).
		Build(ctx)
	if err == nil {
		t.Fatal("Build decoded garbage without error")
	}

	if count := v1.RoomsCount(); count != 0 {
		t.Errorf("failed bootstrap leaked into v1 cursor: RoomsCount = %d, want 0", count)
	}
	if list := v1.RoomsList(); len(list) != 0 {
		t.Errorf("failed bootstrap leaked into v1 cursor: RoomsList = %v, want empty", list)
	}
}

// The same holds when the views all decode but the session-level
// record is the one that fails.
func TestBuildAbortOnSessionRecordLeavesViewsUntouched(t *testing.T) {
	ctx := context.Background()
	backing := store.OpenMemoryStore()
	roomA := ref.MustParseRoomID("!a:example.org")

	seedSnapshot(t, backing, viewKey("main", "all"), frozenView{
		RoomsCount: 3,
		RoomsList:  []ref.RoomID{roomA},
	})
	if _, err := backing.SetCustomValue(ctx, sessionKey("main"), []byte{0xff, 0x00}); err != nil {
		t.Fatalf("seeding garbage: %v", err)
	}

	view := mustView(t, "all")
	_, err := NewBuilder(backing).StorageKey("main").AddView(view).Build(ctx)
	if err == nil {
		t.Fatal("Build decoded a garbage session record without error")
	}
	if count := view.RoomsCount(); count != 0 {
		t.Errorf("failed bootstrap leaked into view cursor: RoomsCount = %d, want 0", count)
	}
}

func TestBuildRequiresStore(t *testing.T) {
	_, err := NewBuilder(nil).Build(context.Background())
	if err == nil {
		t.Fatal("Build without a store succeeded")
	}
}

func TestAddFullSyncView(t *testing.T) {
	session, err := NewBuilder(store.OpenMemoryStore()).
		AddFullSyncView().
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	view := session.View(FullSyncViewName)
	if view == nil {
		t.Fatal("full-sync view missing from session")
	}
	if orders := view.SortOrders(); len(orders) != 2 || orders[0] != "by_recency" {
		t.Errorf("full-sync SortOrders = %v", orders)
	}
}

func mustCBOR(t *testing.T, v any) codec.RawMessage {
	t.Helper()
	raw, err := codec.Marshal(v)
	if err != nil {
		t.Fatalf("encoding test payload: %v", err)
	}
	return codec.RawMessage(raw)
}
