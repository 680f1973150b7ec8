// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references
// for Matrix protocol entities: room IDs, user IDs, event IDs, event
// types, and mxc:// media URIs.
//
// Identifiers arrive from the homeserver as raw strings in sync
// responses and stored records. They are parsed into these value types
// at the boundary; once constructed, a ref is immutable and known
// valid, so interior code never re-validates. All constructors return
// errors for malformed input — there is no lenient mode.
//
// The zero value of every ref type is invalid; use the IsZero method
// to check. JSON and CBOR serialization use the canonical string form
// via encoding.TextMarshaler / encoding.TextUnmarshaler.
package ref
