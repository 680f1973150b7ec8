// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import (
	"fmt"
	"sync"

	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// View is a named windowed room-list specification. The request
// parameters (sort orders, timeline limit) are fixed at build time;
// the cursor (room count and ordered room-id window) is live state,
// mutated by snapshot restore and by the response-apply cycle.
type View struct {
	name          string
	sortOrders    []string
	timelineLimit uint32

	mu         sync.Mutex
	roomsCount int
	roomsList  []ref.RoomID
}

// Name returns the view's name, which doubles as its snapshot key
// suffix.
func (v *View) Name() string {
	return v.name
}

// SortOrders returns the configured sort orders.
func (v *View) SortOrders() []string {
	out := make([]string, len(v.sortOrders))
	copy(out, v.sortOrders)
	return out
}

// TimelineLimit returns the configured per-room timeline limit.
func (v *View) TimelineLimit() uint32 {
	return v.timelineLimit
}

// RoomsCount returns the server-reported total room count for this
// view.
func (v *View) RoomsCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.roomsCount
}

// RoomsList returns a copy of the view's current room-id window.
func (v *View) RoomsList() []ref.RoomID {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]ref.RoomID, len(v.roomsList))
	copy(out, v.roomsList)
	return out
}

// setFromCold installs a restored cursor. Called once per view during
// bootstrap, before the session is handed to the caller.
func (v *View) setFromCold(roomsCount int, roomsList []ref.RoomID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.roomsCount = roomsCount
	v.roomsList = roomsList
}

// SetCursor replaces the live cursor. Called by the response-apply
// cycle when the server advances this view's window.
func (v *View) SetCursor(roomsCount int, roomsList []ref.RoomID) {
	copied := make([]ref.RoomID, len(roomsList))
	copy(copied, roomsList)
	v.setFromCold(roomsCount, copied)
}

// ViewBuilder assembles a View. Name is required; everything else has
// a usable zero value.
type ViewBuilder struct {
	name          string
	sortOrders    []string
	timelineLimit uint32
}

// NewViewBuilder returns a builder for a view with the given name.
func NewViewBuilder(name string) *ViewBuilder {
	return &ViewBuilder{name: name}
}

// SortOrders sets the sort orders requested for this view.
func (b *ViewBuilder) SortOrders(orders ...string) *ViewBuilder {
	b.sortOrders = append([]string(nil), orders...)
	return b
}

// TimelineLimit sets the number of timeline events requested per
// room.
func (b *ViewBuilder) TimelineLimit(limit uint32) *ViewBuilder {
	b.timelineLimit = limit
	return b
}

// Build validates the configuration and returns the View.
func (b *ViewBuilder) Build() (*View, error) {
	if b.name == "" {
		return nil, fmt.Errorf("%w: view requires a name", ErrMisconfigured)
	}
	return &View{
		name:          b.name,
		sortOrders:    append([]string(nil), b.sortOrders...),
		timelineLimit: b.timelineLimit,
	}, nil
}
