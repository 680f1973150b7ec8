// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// Store is the room cache façade: it wraps a StateStore with the live
// session, the cached sync token, and the two room partitions, and
// exposes every StateStore capability through the embedded interface.
//
// The confirmed partition holds joined and left rooms; the stripped
// partition holds invite previews. A room ID may transiently appear in
// both — the lookup rules in [Store.Room] resolve the discrepancy in
// favor of the stripped entry whenever the room is recorded as
// invited.
type Store struct {
	StateStore

	// mu guards session and syncToken. Read-heavy: every room
	// creation reads the session, only RestoreSession and applied
	// changesets write.
	mu        sync.RWMutex
	session   *Session
	syncToken string

	roomsMu sync.RWMutex
	rooms   map[ref.RoomID]*Room

	strippedMu sync.RWMutex
	stripped   map[ref.RoomID]*Room
}

// NewStore creates a façade wrapping the given storage engine.
func NewStore(inner StateStore) *Store {
	return &Store{
		StateStore: inner,
		rooms:      make(map[ref.RoomID]*Room),
		stripped:   make(map[ref.RoomID]*Room),
	}
}

// OpenMemoryStore creates a façade over a fresh in-memory engine.
func OpenMemoryStore() *Store {
	return NewStore(NewMemoryStore())
}

// RestoreSession materializes the cached rooms from the backend and
// installs the session, making room creation possible. Confirmed rooms
// are loaded before stripped rooms; the session is installed last, so
// a failure mid-load leaves the façade without a session but with
// whatever partitions completed — consistent per partition, not
// necessarily empty. Callers retrying must not assume a clean slate.
//
// RestoreSession must not be called concurrently with itself.
func (s *Store) RestoreSession(ctx context.Context, session Session) error {
	infos, err := s.StateStore.RoomInfos(ctx)
	if err != nil {
		return fmt.Errorf("store: loading confirmed rooms: %w", err)
	}
	s.roomsMu.Lock()
	for _, info := range infos {
		s.rooms[info.RoomID] = newRoom(session.UserID, s.StateStore, info)
	}
	s.roomsMu.Unlock()

	strippedInfos, err := s.StateStore.StrippedRoomInfos(ctx)
	if err != nil {
		return fmt.Errorf("store: loading stripped rooms: %w", err)
	}
	s.strippedMu.Lock()
	for _, info := range strippedInfos {
		s.stripped[info.RoomID] = newRoom(session.UserID, s.StateStore, info)
	}
	s.strippedMu.Unlock()

	token, err := s.StateStore.SyncToken(ctx)
	if err != nil {
		return fmt.Errorf("store: loading sync token: %w", err)
	}

	s.mu.Lock()
	s.syncToken = token
	s.session = &session
	s.mu.Unlock()

	return nil
}

// Session returns a copy of the installed session, or nil if none has
// been installed yet.
func (s *Store) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// CachedSyncToken returns the sync token as of the last restore or
// applied changeset, without touching the backend.
func (s *Store) CachedSyncToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncToken
}

// SaveChanges forwards the changeset to the backend and, on success,
// folds the changeset's room metadata and sync token into the façade's
// own caches. Live Room objects observe their updated metadata; rooms
// not yet materialized stay unmaterialized until looked up or created.
func (s *Store) SaveChanges(ctx context.Context, changes *StateChanges) error {
	if err := s.StateStore.SaveChanges(ctx, changes); err != nil {
		return err
	}

	s.roomsMu.RLock()
	for roomID, info := range changes.RoomInfos {
		if room, ok := s.rooms[roomID]; ok {
			room.updateInfo(info)
		}
	}
	s.roomsMu.RUnlock()

	s.strippedMu.RLock()
	for roomID, info := range changes.StrippedRoomInfos {
		if room, ok := s.stripped[roomID]; ok {
			room.updateInfo(info)
		}
	}
	s.strippedMu.RUnlock()

	if changes.SyncToken != "" {
		s.mu.Lock()
		s.syncToken = changes.SyncToken
		s.mu.Unlock()
	}
	return nil
}

// Room returns the live room for the given ID, or nil if the façade
// holds none. A confirmed entry recorded as invited is stale by
// definition — such lookups resolve through the stripped partition,
// falling back to nil if the preview is gone too.
func (s *Store) Room(roomID ref.RoomID) *Room {
	s.roomsMu.RLock()
	room, ok := s.rooms[roomID]
	s.roomsMu.RUnlock()

	if ok && room.Category() != CategoryInvited {
		return room
	}
	return s.StrippedRoom(roomID)
}

// StrippedRoom returns the invite-preview room for the given ID, or
// nil if the stripped partition holds none.
func (s *Store) StrippedRoom(roomID ref.RoomID) *Room {
	s.strippedMu.RLock()
	defer s.strippedMu.RUnlock()
	return s.stripped[roomID]
}

// Rooms returns a point-in-time snapshot of every room resolvable via
// the confirmed lookup rule. Order is unspecified.
func (s *Store) Rooms() []*Room {
	s.roomsMu.RLock()
	ids := make([]ref.RoomID, 0, len(s.rooms))
	for roomID := range s.rooms {
		ids = append(ids, roomID)
	}
	s.roomsMu.RUnlock()

	rooms := make([]*Room, 0, len(ids))
	for _, roomID := range ids {
		if room := s.Room(roomID); room != nil {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

// StrippedRooms returns a point-in-time snapshot of every room in the
// stripped partition. Order is unspecified.
func (s *Store) StrippedRooms() []*Room {
	s.strippedMu.RLock()
	defer s.strippedMu.RUnlock()
	rooms := make([]*Room, 0, len(s.stripped))
	for _, room := range s.stripped {
		rooms = append(rooms, room)
	}
	return rooms
}

// GetOrCreateRoom returns the confirmed room with the given ID,
// creating it with the given category if absent. Invited rooms are
// delegated to the stripped partition. Repeat calls with the same ID
// return the identical instance. Fails with ErrNoSession if no session
// has been installed.
func (s *Store) GetOrCreateRoom(roomID ref.RoomID, category RoomCategory) (*Room, error) {
	if category == CategoryInvited {
		return s.GetOrCreateStrippedRoom(roomID)
	}

	userID, err := s.sessionUserID()
	if err != nil {
		return nil, err
	}

	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if room, ok := s.rooms[roomID]; ok {
		return room, nil
	}
	room := newRoom(userID, s.StateStore, RoomInfo{RoomID: roomID, Category: category})
	s.rooms[roomID] = room
	return room, nil
}

// GetOrCreateStrippedRoom returns the stripped room with the given ID,
// creating an invite-preview entry if absent. Fails with ErrNoSession
// if no session has been installed.
func (s *Store) GetOrCreateStrippedRoom(roomID ref.RoomID) (*Room, error) {
	userID, err := s.sessionUserID()
	if err != nil {
		return nil, err
	}

	s.strippedMu.Lock()
	defer s.strippedMu.Unlock()
	if room, ok := s.stripped[roomID]; ok {
		return room, nil
	}
	room := newRoom(userID, s.StateStore, RoomInfo{RoomID: roomID, Category: CategoryInvited})
	s.stripped[roomID] = room
	return room, nil
}

// sessionUserID returns the installed session's user ID, or
// ErrNoSession.
func (s *Store) sessionUserID() (ref.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ref.UserID{}, ErrNoSession
	}
	return s.session.UserID, nil
}
