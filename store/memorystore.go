// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// mediaCacheSize bounds the media cache. Media blobs are the only
// unbounded-size payloads the store holds, so the cache keeps the most
// recent entries and evicts the oldest.
const mediaCacheSize = 100

// MemoryStore is the in-memory reference implementation of
// [StateStore]. All state lives in maps guarded by one mutex;
// SaveChanges applies a whole changeset under that single lock, which
// is this backend's transaction discipline — readers observe either
// none or all of a changeset.
//
// Media blobs are LZ4-compressed and custom key-value records
// zstd-compressed in memory; both fall back to raw storage for
// incompressible input.
type MemoryStore struct {
	mu sync.Mutex

	filters     map[string]string
	syncToken   string
	accountData map[ref.EventType]codec.RawMessage
	presence    map[ref.UserID]codec.RawMessage

	state           map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage
	strippedState   map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage
	members         map[ref.RoomID]map[ref.UserID]MemberEvent
	strippedMembers map[ref.RoomID]map[ref.UserID]StrippedMemberEvent
	profiles        map[ref.RoomID]map[ref.UserID]MemberProfile
	roomInfos       map[ref.RoomID]RoomInfo
	strippedInfos   map[ref.RoomID]RoomInfo
	roomAccountData map[ref.RoomID]map[ref.EventType]codec.RawMessage
	displayNames    map[ref.RoomID]map[string]map[ref.UserID]struct{}
	notifications   map[ref.RoomID][]Notification

	// userReceipts holds the latest receipt per (room, type, user);
	// eventReceipts is the reverse index per (room, type, event).
	// SaveChanges keeps the two in lockstep.
	userReceipts  map[ref.RoomID]map[ReceiptType]map[ref.UserID]ReceiptPosition
	eventReceipts map[ref.RoomID]map[ReceiptType]map[ref.EventID]map[ref.UserID]Receipt

	timelines map[ref.RoomID]*memoryTimeline

	custom map[string][]byte
	media  []mediaEntry
}

// memoryTimeline is the cached timeline of one room.
type memoryTimeline struct {
	events    []TimelineEvent
	prevBatch string
}

// mediaEntry is one cached media blob. The URI is kept alongside the
// request key so RemoveMediaContentForURI can match all renditions.
type mediaEntry struct {
	key  string
	uri  ref.MxcURI
	blob []byte
}

// NewMemoryStore creates an empty in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		filters:         make(map[string]string),
		accountData:     make(map[ref.EventType]codec.RawMessage),
		presence:        make(map[ref.UserID]codec.RawMessage),
		state:           make(map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage),
		strippedState:   make(map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage),
		members:         make(map[ref.RoomID]map[ref.UserID]MemberEvent),
		strippedMembers: make(map[ref.RoomID]map[ref.UserID]StrippedMemberEvent),
		profiles:        make(map[ref.RoomID]map[ref.UserID]MemberProfile),
		roomInfos:       make(map[ref.RoomID]RoomInfo),
		strippedInfos:   make(map[ref.RoomID]RoomInfo),
		roomAccountData: make(map[ref.RoomID]map[ref.EventType]codec.RawMessage),
		displayNames:    make(map[ref.RoomID]map[string]map[ref.UserID]struct{}),
		notifications:   make(map[ref.RoomID][]Notification),
		userReceipts:    make(map[ref.RoomID]map[ReceiptType]map[ref.UserID]ReceiptPosition),
		eventReceipts:   make(map[ref.RoomID]map[ReceiptType]map[ref.EventID]map[ref.UserID]Receipt),
		timelines:       make(map[ref.RoomID]*memoryTimeline),
		custom:          make(map[string][]byte),
	}
}

var _ StateStore = (*MemoryStore)(nil)

func (m *MemoryStore) SaveFilter(_ context.Context, name, filterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[name] = filterID
	return nil
}

func (m *MemoryStore) Filter(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters[name], nil
}

func (m *MemoryStore) SyncToken(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncToken, nil
}

func (m *MemoryStore) SaveChanges(_ context.Context, changes *StateChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if changes.SyncToken != "" {
		m.syncToken = changes.SyncToken
	}
	for name, filterID := range changes.Filters {
		m.filters[name] = filterID
	}
	for eventType, raw := range changes.AccountData {
		m.accountData[eventType] = raw
	}
	for userID, raw := range changes.Presence {
		m.presence[userID] = raw
	}

	for roomID, perType := range changes.State {
		applyStateEvents(m.state, roomID, perType)
	}
	for roomID, perType := range changes.StrippedState {
		applyStateEvents(m.strippedState, roomID, perType)
	}

	for roomID, perUser := range changes.Members {
		room := m.members[roomID]
		if room == nil {
			room = make(map[ref.UserID]MemberEvent)
			m.members[roomID] = room
		}
		for userID, event := range perUser {
			room[userID] = event
		}
	}
	for roomID, perUser := range changes.StrippedMembers {
		room := m.strippedMembers[roomID]
		if room == nil {
			room = make(map[ref.UserID]StrippedMemberEvent)
			m.strippedMembers[roomID] = room
		}
		for userID, event := range perUser {
			room[userID] = event
		}
	}
	for roomID, perUser := range changes.Profiles {
		room := m.profiles[roomID]
		if room == nil {
			room = make(map[ref.UserID]MemberProfile)
			m.profiles[roomID] = room
		}
		for userID, profile := range perUser {
			room[userID] = profile
		}
	}

	for roomID, info := range changes.RoomInfos {
		m.roomInfos[roomID] = info
	}
	for roomID, info := range changes.StrippedRoomInfos {
		m.strippedInfos[roomID] = info
	}

	for roomID, perType := range changes.RoomAccountData {
		room := m.roomAccountData[roomID]
		if room == nil {
			room = make(map[ref.EventType]codec.RawMessage)
			m.roomAccountData[roomID] = room
		}
		for eventType, raw := range perType {
			room[eventType] = raw
		}
	}

	for roomID, perName := range changes.AmbiguityMaps {
		room := m.displayNames[roomID]
		if room == nil {
			room = make(map[string]map[ref.UserID]struct{})
			m.displayNames[roomID] = room
		}
		for name, users := range perName {
			room[name] = users
		}
	}

	for roomID, list := range changes.Notifications {
		m.notifications[roomID] = append(m.notifications[roomID], list...)
	}

	for roomID, content := range changes.Receipts {
		m.applyReceipts(roomID, content)
	}

	for roomID, slice := range changes.Timeline {
		m.applyTimeline(roomID, slice)
	}

	return nil
}

// applyStateEvents folds one room's typed state events into target.
func applyStateEvents(
	target map[ref.RoomID]map[ref.EventType]map[string]codec.RawMessage,
	roomID ref.RoomID,
	perType map[ref.EventType]map[string]codec.RawMessage,
) {
	room := target[roomID]
	if room == nil {
		room = make(map[ref.EventType]map[string]codec.RawMessage)
		target[roomID] = room
	}
	for eventType, perKey := range perType {
		typed := room[eventType]
		if typed == nil {
			typed = make(map[string]codec.RawMessage)
			room[eventType] = typed
		}
		for stateKey, raw := range perKey {
			typed[stateKey] = raw
		}
	}
}

// applyReceipts folds one m.receipt event body in, maintaining the
// latest-receipt invariant: a user has at most one receipt per type
// per room, and the event index never holds superseded receipts.
func (m *MemoryStore) applyReceipts(roomID ref.RoomID, content ReceiptContent) {
	byUser := m.userReceipts[roomID]
	if byUser == nil {
		byUser = make(map[ReceiptType]map[ref.UserID]ReceiptPosition)
		m.userReceipts[roomID] = byUser
	}
	byEvent := m.eventReceipts[roomID]
	if byEvent == nil {
		byEvent = make(map[ReceiptType]map[ref.EventID]map[ref.UserID]Receipt)
		m.eventReceipts[roomID] = byEvent
	}

	for eventID, perType := range content {
		for receiptType, perUser := range perType {
			typedUsers := byUser[receiptType]
			if typedUsers == nil {
				typedUsers = make(map[ref.UserID]ReceiptPosition)
				byUser[receiptType] = typedUsers
			}
			typedEvents := byEvent[receiptType]
			if typedEvents == nil {
				typedEvents = make(map[ref.EventID]map[ref.UserID]Receipt)
				byEvent[receiptType] = typedEvents
			}

			for userID, receipt := range perUser {
				if previous, ok := typedUsers[userID]; ok {
					if users := typedEvents[previous.EventID]; users != nil {
						delete(users, userID)
						if len(users) == 0 {
							delete(typedEvents, previous.EventID)
						}
					}
				}
				typedUsers[userID] = ReceiptPosition{EventID: eventID, Receipt: receipt}
				users := typedEvents[eventID]
				if users == nil {
					users = make(map[ref.UserID]Receipt)
					typedEvents[eventID] = users
				}
				users[userID] = receipt
			}
		}
	}
}

// applyTimeline folds a timeline slice in. A limited slice means the
// server elided events between the cached timeline and this one — the
// old events are no longer contiguous and are dropped.
func (m *MemoryStore) applyTimeline(roomID ref.RoomID, slice TimelineSlice) {
	timeline := m.timelines[roomID]
	if timeline == nil || slice.Limited {
		m.timelines[roomID] = &memoryTimeline{
			events:    append([]TimelineEvent(nil), slice.Events...),
			prevBatch: slice.End,
		}
		return
	}
	timeline.events = append(timeline.events, slice.Events...)
}

func (m *MemoryStore) PresenceEvent(_ context.Context, userID ref.UserID) (codec.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presence[userID], nil
}

func (m *MemoryStore) StateEvent(_ context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (codec.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state[roomID][eventType][stateKey], nil
}

func (m *MemoryStore) StateEvents(_ context.Context, roomID ref.RoomID, eventType ref.EventType) ([]codec.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perKey := m.state[roomID][eventType]
	if len(perKey) == 0 {
		return nil, nil
	}
	events := make([]codec.RawMessage, 0, len(perKey))
	for _, raw := range perKey {
		events = append(events, raw)
	}
	return events, nil
}

func (m *MemoryStore) Profile(_ context.Context, roomID ref.RoomID, userID ref.UserID) (*MemberProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, ok := m.profiles[roomID][userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (m *MemoryStore) MemberEvent(_ context.Context, roomID ref.RoomID, userID ref.UserID) (*MemberEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.members[roomID][userID]
	if !ok {
		return nil, nil
	}
	return &event, nil
}

func (m *MemoryStore) UserIDs(_ context.Context, roomID ref.RoomID) ([]ref.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perUser := m.members[roomID]
	if len(perUser) == 0 {
		return nil, nil
	}
	userIDs := make([]ref.UserID, 0, len(perUser))
	for userID := range perUser {
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}

func (m *MemoryStore) JoinedUserIDs(ctx context.Context, roomID ref.RoomID) ([]ref.UserID, error) {
	return m.userIDsWithMembership(roomID, MembershipJoin)
}

func (m *MemoryStore) InvitedUserIDs(ctx context.Context, roomID ref.RoomID) ([]ref.UserID, error) {
	return m.userIDsWithMembership(roomID, MembershipInvite)
}

func (m *MemoryStore) userIDsWithMembership(roomID ref.RoomID, membership Membership) ([]ref.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var userIDs []ref.UserID
	for userID, event := range m.members[roomID] {
		if event.Membership == membership {
			userIDs = append(userIDs, userID)
		}
	}
	return userIDs, nil
}

func (m *MemoryStore) RoomInfos(_ context.Context) ([]RoomInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]RoomInfo, 0, len(m.roomInfos))
	for _, info := range m.roomInfos {
		infos = append(infos, info)
	}
	return infos, nil
}

func (m *MemoryStore) StrippedRoomInfos(_ context.Context) ([]RoomInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]RoomInfo, 0, len(m.strippedInfos))
	for _, info := range m.strippedInfos {
		infos = append(infos, info)
	}
	return infos, nil
}

func (m *MemoryStore) UsersWithDisplayName(_ context.Context, roomID ref.RoomID, displayName string) ([]ref.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := m.displayNames[roomID][displayName]
	if len(users) == 0 {
		return nil, nil
	}
	userIDs := make([]ref.UserID, 0, len(users))
	for userID := range users {
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}

func (m *MemoryStore) AccountData(_ context.Context, eventType ref.EventType) (codec.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accountData[eventType], nil
}

func (m *MemoryStore) RoomAccountData(_ context.Context, roomID ref.RoomID, eventType ref.EventType) (codec.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomAccountData[roomID][eventType], nil
}

func (m *MemoryStore) UserRoomReceipt(_ context.Context, roomID ref.RoomID, receiptType ReceiptType, userID ref.UserID) (*ReceiptPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	position, ok := m.userReceipts[roomID][receiptType][userID]
	if !ok {
		return nil, nil
	}
	return &position, nil
}

func (m *MemoryStore) EventRoomReceipts(_ context.Context, roomID ref.RoomID, receiptType ReceiptType, eventID ref.EventID) ([]UserReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perUser := m.eventReceipts[roomID][receiptType][eventID]
	if len(perUser) == 0 {
		return nil, nil
	}
	receipts := make([]UserReceipt, 0, len(perUser))
	for userID, receipt := range perUser {
		receipts = append(receipts, UserReceipt{UserID: userID, Receipt: receipt})
	}
	return receipts, nil
}

func (m *MemoryStore) CustomValue(_ context.Context, key []byte) ([]byte, error) {
	m.mu.Lock()
	blob, ok := m.custom[string(key)]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	value, err := decodeBlob(blob)
	if err != nil {
		return nil, CodecError(err)
	}
	return value, nil
}

func (m *MemoryStore) SetCustomValue(_ context.Context, key, value []byte) ([]byte, error) {
	blob := encodeBlob(value, blobZstd)

	m.mu.Lock()
	previous, hadPrevious := m.custom[string(key)]
	m.custom[string(key)] = blob
	m.mu.Unlock()

	if !hadPrevious {
		return nil, nil
	}
	previousValue, err := decodeBlob(previous)
	if err != nil {
		return nil, CodecError(err)
	}
	return previousValue, nil
}

func (m *MemoryStore) AddMediaContent(_ context.Context, request *MediaRequest, content []byte) error {
	entry := mediaEntry{
		key:  request.CacheKey(),
		uri:  request.URI,
		blob: encodeBlob(content, blobLZ4),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.media {
		if m.media[i].key == entry.key {
			m.media[i] = entry
			return nil
		}
	}
	m.media = append(m.media, entry)
	if len(m.media) > mediaCacheSize {
		m.media = m.media[len(m.media)-mediaCacheSize:]
	}
	return nil
}

func (m *MemoryStore) MediaContent(_ context.Context, request *MediaRequest) ([]byte, error) {
	key := request.CacheKey()

	m.mu.Lock()
	var blob []byte
	for i := range m.media {
		if m.media[i].key == key {
			blob = m.media[i].blob
			break
		}
	}
	m.mu.Unlock()

	if blob == nil {
		return nil, nil
	}
	content, err := decodeBlob(blob)
	if err != nil {
		return nil, CodecError(err)
	}
	return content, nil
}

func (m *MemoryStore) RemoveMediaContent(_ context.Context, request *MediaRequest) error {
	key := request.CacheKey()

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.media {
		if m.media[i].key == key {
			m.media = append(m.media[:i], m.media[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryStore) RemoveMediaContentForURI(_ context.Context, uri ref.MxcURI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.media[:0]
	for _, entry := range m.media {
		if entry.uri != uri {
			kept = append(kept, entry)
		}
	}
	m.media = kept
	return nil
}

func (m *MemoryStore) RemoveRoom(_ context.Context, roomID ref.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, roomID)
	delete(m.strippedState, roomID)
	delete(m.members, roomID)
	delete(m.strippedMembers, roomID)
	delete(m.profiles, roomID)
	delete(m.roomInfos, roomID)
	delete(m.strippedInfos, roomID)
	delete(m.roomAccountData, roomID)
	delete(m.displayNames, roomID)
	delete(m.notifications, roomID)
	delete(m.userReceipts, roomID)
	delete(m.eventReceipts, roomID)
	delete(m.timelines, roomID)
	return nil
}

func (m *MemoryStore) RoomTimeline(_ context.Context, roomID ref.RoomID) (TimelineStream, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	timeline := m.timelines[roomID]
	if timeline == nil {
		return nil, "", nil
	}
	// Snapshot: the stream stays valid while later changesets mutate
	// the cached timeline, and a fresh RoomTimeline call restarts
	// from the beginning.
	events := append([]TimelineEvent(nil), timeline.events...)
	return &sliceTimelineStream{events: events}, timeline.prevBatch, nil
}

// sliceTimelineStream serves a timeline snapshot event by event.
type sliceTimelineStream struct {
	events []TimelineEvent
	next   int
}

func (s *sliceTimelineStream) Next(ctx context.Context) (*TimelineEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.events) {
		return nil, nil
	}
	event := s.events[s.next]
	s.next++
	return &event, nil
}
