// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
	"github.com/bjorn-ove/matrix-sdk-go/lib/watch"
	"github.com/bjorn-ove/matrix-sdk-go/store"
)

// RoomSubscription is a standing request for a specific room's data,
// independent of whether any view's window covers it.
type RoomSubscription struct {
	TimelineLimit uint32 `json:"timeline_limit,omitempty"`
}

// SlidingSync is a live sliding-sync session. It is safe for
// concurrent use; the position and delta-token cursors are observable
// cells so sync-loop observers need not poll.
type SlidingSync struct {
	homeserver string
	storageKey string
	store      *store.Store

	viewsMu sync.RWMutex
	views   []*View

	roomsMu sync.RWMutex
	rooms   map[ref.RoomID]*Room

	extensionsMu sync.Mutex
	extensions   ExtensionsConfig

	subsMu        sync.RWMutex
	subscriptions map[ref.RoomID]RoomSubscription
	unsubscribe   []ref.RoomID

	pos        *watch.Cell[string]
	deltaToken *watch.Cell[string]

	failures atomic.Uint32
}

// Homeserver returns the configured sync endpoint override, or ""
// when the account default applies.
func (s *SlidingSync) Homeserver() string {
	return s.homeserver
}

// StorageKey returns the snapshot storage key, or "" when persistence
// is disabled.
func (s *SlidingSync) StorageKey() string {
	return s.storageKey
}

// View returns the view with the given name, or nil when no such view
// is configured.
func (s *SlidingSync) View(name string) *View {
	s.viewsMu.RLock()
	defer s.viewsMu.RUnlock()
	for _, view := range s.views {
		if view.Name() == name {
			return view
		}
	}
	return nil
}

// Views returns the configured views in insertion order.
func (s *SlidingSync) Views() []*View {
	s.viewsMu.RLock()
	defer s.viewsMu.RUnlock()
	out := make([]*View, len(s.views))
	copy(out, s.views)
	return out
}

// Room returns the session's cached room, or nil when the session has
// not seen it.
func (s *SlidingSync) Room(roomID ref.RoomID) *Room {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	return s.rooms[roomID]
}

// Rooms returns a snapshot of all cached rooms, in no particular
// order.
func (s *SlidingSync) Rooms() []*Room {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}

// AddRoom installs a room the server introduced mid-session. An
// existing entry for the same id is kept.
func (s *SlidingSync) AddRoom(room *Room) {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if _, exists := s.rooms[room.RoomID()]; exists {
		return
	}
	s.rooms[room.RoomID()] = room
}

// Extensions returns a copy of the current extension configuration.
func (s *SlidingSync) Extensions() ExtensionsConfig {
	s.extensionsMu.Lock()
	defer s.extensionsMu.Unlock()
	return s.extensions.clone()
}

// SetToDeviceSince records an advanced to-device resumption token.
// Ignored when the to-device extension is absent.
func (s *SlidingSync) SetToDeviceSince(since string) {
	s.extensionsMu.Lock()
	defer s.extensionsMu.Unlock()
	if s.extensions.ToDevice == nil {
		return
	}
	s.extensions.ToDevice.Since = since
}

// Subscribe adds a standing subscription for the given room. A prior
// pending unsubscription for the room is cancelled.
func (s *SlidingSync) Subscribe(roomID ref.RoomID, sub RoomSubscription) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subscriptions[roomID] = sub
	for i, queued := range s.unsubscribe {
		if queued == roomID {
			s.unsubscribe = append(s.unsubscribe[:i], s.unsubscribe[i+1:]...)
			break
		}
	}
}

// Unsubscribe removes a standing subscription and queues the room for
// an unsubscription notice to the server. Unknown rooms are ignored.
func (s *SlidingSync) Unsubscribe(roomID ref.RoomID) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if _, subscribed := s.subscriptions[roomID]; !subscribed {
		return
	}
	delete(s.subscriptions, roomID)
	s.unsubscribe = append(s.unsubscribe, roomID)
}

// Subscriptions returns a copy of the standing subscriptions.
func (s *SlidingSync) Subscriptions() map[ref.RoomID]RoomSubscription {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	out := make(map[ref.RoomID]RoomSubscription, len(s.subscriptions))
	for roomID, sub := range s.subscriptions {
		out[roomID] = sub
	}
	return out
}

// DrainUnsubscriptions returns the queued unsubscription notices and
// clears the queue. The caller is responsible for delivering them.
func (s *SlidingSync) DrainUnsubscriptions() []ref.RoomID {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	drained := s.unsubscribe
	s.unsubscribe = nil
	return drained
}

// Pos is the observable position cursor for the current connection.
func (s *SlidingSync) Pos() *watch.Cell[string] {
	return s.pos
}

// DeltaToken is the observable delta-token cursor. It survives
// restarts via the session snapshot.
func (s *SlidingSync) DeltaToken() *watch.Cell[string] {
	return s.deltaToken
}

// RecordFailure increments the consecutive-failure counter and
// returns the new count.
func (s *SlidingSync) RecordFailure() uint32 {
	return s.failures.Add(1)
}

// ResetFailures clears the consecutive-failure counter after a
// successful sync.
func (s *SlidingSync) ResetFailures() {
	s.failures.Store(0)
}

// Failures returns the consecutive-failure count.
func (s *SlidingSync) Failures() uint32 {
	return s.failures.Load()
}

// Persist writes the session-level snapshot and one snapshot per view
// through the store's custom key-value capability. No-op when the
// session has no storage key. The records written here are exactly
// what Builder.Build restores.
func (s *SlidingSync) Persist(ctx context.Context) error {
	if s.storageKey == "" {
		return nil
	}

	cold := frozenSlidingSync{DeltaToken: s.deltaToken.Get()}
	s.extensionsMu.Lock()
	if s.extensions.ToDevice != nil {
		cold.ToDeviceSince = s.extensions.ToDevice.Since
	}
	s.extensionsMu.Unlock()

	raw, err := codec.Marshal(cold)
	if err != nil {
		return store.CodecError(fmt.Errorf("encoding session snapshot: %w", err))
	}
	if _, err := s.store.SetCustomValue(ctx, sessionKey(s.storageKey), raw); err != nil {
		return fmt.Errorf("slidingsync: persisting session snapshot: %w", err)
	}

	for _, view := range s.Views() {
		if err := s.persistView(ctx, view); err != nil {
			return err
		}
	}
	return nil
}

// persistView freezes one view: its cursor plus the cached payload of
// every room currently in its window.
func (s *SlidingSync) persistView(ctx context.Context, view *View) error {
	cold := frozenView{
		RoomsCount: view.RoomsCount(),
		RoomsList:  view.RoomsList(),
		Rooms:      map[ref.RoomID]frozenRoom{},
	}
	s.roomsMu.RLock()
	for _, roomID := range cold.RoomsList {
		if room, cached := s.rooms[roomID]; cached {
			cold.Rooms[roomID] = room.freeze()
		}
	}
	s.roomsMu.RUnlock()

	raw, err := codec.Marshal(cold)
	if err != nil {
		return store.CodecError(fmt.Errorf("encoding snapshot for view %q: %w", view.Name(), err))
	}
	if _, err := s.store.SetCustomValue(ctx, viewKey(s.storageKey, view.Name()), raw); err != nil {
		return fmt.Errorf("slidingsync: persisting snapshot for view %q: %w", view.Name(), err)
	}
	return nil
}
