// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
	"github.com/bjorn-ove/matrix-sdk-go/lib/watch"
	"github.com/bjorn-ove/matrix-sdk-go/store"
)

// Builder assembles a SlidingSync session from configuration plus, if
// a storage key is set, a previously persisted snapshot.
type Builder struct {
	store      *store.Store
	homeserver string
	storageKey string
	views      []*View

	extensions ExtensionsConfig
	wantCommon bool
	wantAll    bool

	// suppress marks extensions explicitly removed with the Without*
	// methods. A suppressed extension stays absent however the merge
	// helpers are combined, mirroring how explicit With* configs are
	// never overwritten.
	suppress struct {
		toDevice    bool
		e2ee        bool
		accountData bool
		typing      bool
		receipts    bool
	}

	subscriptions map[ref.RoomID]RoomSubscription
}

// FullSyncViewName is the name of the catch-all view added by
// [Builder.AddFullSyncView].
const FullSyncViewName = "full-sync"

// NewBuilder returns a builder for a sliding-sync session backed by
// the given store.
func NewBuilder(backing *store.Store) *Builder {
	return &Builder{
		store:         backing,
		subscriptions: map[ref.RoomID]RoomSubscription{},
	}
}

// Homeserver overrides the sync endpoint. Empty means the session
// uses the account's homeserver.
func (b *Builder) Homeserver(url string) *Builder {
	b.homeserver = url
	return b
}

// StorageKey enables snapshot persistence under the given key. The
// session-level record is stored at the key itself, per-view records
// at "<key>::<view name>".
func (b *Builder) StorageKey(key string) *Builder {
	b.storageKey = key
	return b
}

// AddView appends a view. Views keep their insertion order: when the
// same room appears in several views' snapshots, the earliest added
// view's payload wins.
func (b *Builder) AddView(view *View) *Builder {
	b.views = append(b.views, view)
	return b
}

// AddFullSyncView appends a catch-all view named
// [FullSyncViewName] covering the whole room list, for callers that
// want every room without describing a window themselves.
func (b *Builder) AddFullSyncView() *Builder {
	return b.AddView(&View{
		name:       FullSyncViewName,
		sortOrders: []string{"by_recency", "by_name"},
	})
}

// WithToDeviceExtension configures the to-device extension
// explicitly. Explicit configuration is never overwritten by
// WithCommonExtensions or WithAllExtensions, regardless of call
// order.
func (b *Builder) WithToDeviceExtension(cfg ToDeviceConfig) *Builder {
	b.extensions.ToDevice = &cfg
	b.suppress.toDevice = false
	return b
}

// WithE2EEExtension configures the end-to-end encryption extension
// explicitly.
func (b *Builder) WithE2EEExtension(cfg E2EEConfig) *Builder {
	b.extensions.E2EE = &cfg
	b.suppress.e2ee = false
	return b
}

// WithAccountDataExtension configures the account-data extension
// explicitly.
func (b *Builder) WithAccountDataExtension(cfg AccountDataConfig) *Builder {
	b.extensions.AccountData = &cfg
	b.suppress.accountData = false
	return b
}

// WithTypingExtension configures the typing extension explicitly.
func (b *Builder) WithTypingExtension(cfg TypingConfig) *Builder {
	b.extensions.Typing = &cfg
	b.suppress.typing = false
	return b
}

// WithReceiptsExtension configures the receipts extension explicitly.
func (b *Builder) WithReceiptsExtension(cfg ReceiptsConfig) *Builder {
	b.extensions.Receipts = &cfg
	b.suppress.receipts = false
	return b
}

// WithoutToDeviceExtension removes the to-device extension. The
// extension stays absent even when WithCommonExtensions or
// WithAllExtensions is also called.
func (b *Builder) WithoutToDeviceExtension() *Builder {
	b.extensions.ToDevice = nil
	b.suppress.toDevice = true
	return b
}

// WithoutE2EEExtension removes the end-to-end encryption extension.
func (b *Builder) WithoutE2EEExtension() *Builder {
	b.extensions.E2EE = nil
	b.suppress.e2ee = true
	return b
}

// WithoutAccountDataExtension removes the account-data extension.
func (b *Builder) WithoutAccountDataExtension() *Builder {
	b.extensions.AccountData = nil
	b.suppress.accountData = true
	return b
}

// WithoutTypingExtension removes the typing extension.
func (b *Builder) WithoutTypingExtension() *Builder {
	b.extensions.Typing = nil
	b.suppress.typing = true
	return b
}

// WithoutReceiptsExtension removes the receipts extension.
func (b *Builder) WithoutReceiptsExtension() *Builder {
	b.extensions.Receipts = nil
	b.suppress.receipts = true
	return b
}

// WithCommonExtensions enables the to-device, E2EE, and account-data
// extensions where no explicit configuration was given.
func (b *Builder) WithCommonExtensions() *Builder {
	b.wantCommon = true
	return b
}

// WithAllExtensions enables every extension where no explicit
// configuration was given.
func (b *Builder) WithAllExtensions() *Builder {
	b.wantAll = true
	return b
}

// Subscribe registers a standing per-room subscription carried by the
// assembled session.
func (b *Builder) Subscribe(roomID ref.RoomID, sub RoomSubscription) *Builder {
	b.subscriptions[roomID] = sub
	return b
}

// Build assembles the session. Without a storage key this is purely
// in-memory. With one, Build restores persisted state in two phases:
// each view's snapshot in insertion order (cursor installed on the
// view, rooms merged first-writer-wins into the session room map),
// then the session-level snapshot (to-device since token injected
// only into an already-configured to-device extension; delta token
// installed unconditionally). A missing record leaves defaults in
// place; a record that fails to decode aborts the whole build. A
// failed build never mutates the persisted cache.
func (b *Builder) Build(ctx context.Context) (*SlidingSync, error) {
	if b.store == nil {
		return nil, fmt.Errorf("%w: builder requires a store", ErrMisconfigured)
	}

	extensions := b.extensions.clone()
	switch {
	case b.wantAll:
		extensions.mergeAllExtensions()
	case b.wantCommon:
		extensions.mergeCommonExtensions()
	}
	if b.suppress.toDevice {
		extensions.ToDevice = nil
	}
	if b.suppress.e2ee {
		extensions.E2EE = nil
	}
	if b.suppress.accountData {
		extensions.AccountData = nil
	}
	if b.suppress.typing {
		extensions.Typing = nil
	}
	if b.suppress.receipts {
		extensions.Receipts = nil
	}

	session := &SlidingSync{
		homeserver:    b.homeserver,
		storageKey:    b.storageKey,
		store:         b.store,
		views:         append([]*View(nil), b.views...),
		rooms:         map[ref.RoomID]*Room{},
		extensions:    extensions,
		subscriptions: map[ref.RoomID]RoomSubscription{},
		pos:           watch.NewCell(""),
		deltaToken:    watch.NewCell(""),
	}
	for roomID, sub := range b.subscriptions {
		session.subscriptions[roomID] = sub
	}

	if b.storageKey == "" {
		slog.Debug("sliding sync assembled cold", "views", len(session.views))
		return session, nil
	}

	// Restored cursors are staged and installed only once every
	// record has decoded. The caller still holds the *View pointers
	// it passed to AddView, so an early install would leak partial
	// work out of a bootstrap that later aborts.
	var staged []stagedCursor
	for _, view := range session.views {
		cursor, err := b.restoreView(ctx, view, session.rooms)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			staged = append(staged, *cursor)
		}
	}
	if err := b.restoreSession(ctx, session); err != nil {
		return nil, err
	}
	for _, cursor := range staged {
		cursor.view.setFromCold(cursor.roomsCount, cursor.roomsList)
	}
	slog.Debug("sliding sync assembled from snapshot",
		"storage_key", b.storageKey,
		"views", len(session.views),
		"rooms", len(session.rooms))
	return session, nil
}

// stagedCursor is a restored view cursor awaiting installation.
type stagedCursor struct {
	view       *View
	roomsCount int
	roomsList  []ref.RoomID
}

// restoreView loads one view's snapshot and returns the staged cursor,
// or nil on a miss (the view keeps its default empty cursor). Restored
// rooms go into the shared room map; the map is private to this build,
// so it needs no staging.
func (b *Builder) restoreView(ctx context.Context, view *View, rooms map[ref.RoomID]*Room) (*stagedCursor, error) {
	key := viewKey(b.storageKey, view.Name())
	raw, err := b.store.CustomValue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("slidingsync: loading snapshot for view %q: %w", view.Name(), err)
	}
	if raw == nil {
		slog.Debug("no snapshot for view", "view", view.Name())
		return nil, nil
	}

	var cold frozenView
	if err := codec.Unmarshal(raw, &cold); err != nil {
		return nil, store.CodecError(fmt.Errorf("decoding snapshot for view %q: %w", view.Name(), err))
	}
	for roomID, frozen := range cold.Rooms {
		if _, taken := rooms[roomID]; taken {
			continue
		}
		rooms[roomID] = newRoomFromFrozen(b.store, frozen)
	}
	slog.Debug("restored view from snapshot",
		"view", view.Name(),
		"rooms_count", cold.RoomsCount,
		"rooms", len(cold.Rooms))
	return &stagedCursor{view: view, roomsCount: cold.RoomsCount, roomsList: cold.RoomsList}, nil
}

// restoreSession loads the session-level snapshot into the assembled
// session. A miss leaves the cursor empty.
func (b *Builder) restoreSession(ctx context.Context, session *SlidingSync) error {
	raw, err := b.store.CustomValue(ctx, sessionKey(b.storageKey))
	if err != nil {
		return fmt.Errorf("slidingsync: loading session snapshot: %w", err)
	}
	if raw == nil {
		slog.Debug("no session snapshot", "storage_key", b.storageKey)
		return nil
	}

	var cold frozenSlidingSync
	if err := codec.Unmarshal(raw, &cold); err != nil {
		return store.CodecError(fmt.Errorf("decoding session snapshot: %w", err))
	}
	// The since token only resumes an extension the caller asked
	// for. A snapshot must never create one.
	if cold.ToDeviceSince != "" && session.extensions.ToDevice != nil {
		session.extensions.ToDevice.Since = cold.ToDeviceSince
	}
	session.deltaToken.Set(cold.DeltaToken)
	slog.Debug("restored session snapshot",
		"storage_key", b.storageKey,
		"delta_token", cold.DeltaToken != "",
		"to_device_since", cold.ToDeviceSince != "")
	return nil
}
