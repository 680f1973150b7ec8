// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the SDK's standard CBOR encoding configuration.
//
// Two serialization formats appear in this module with a clear
// boundary: JSON stays on the Matrix wire (event content arrives as
// JSON and is cached verbatim as RawMessage payloads), while CBOR is
// used for every record this module writes itself — frozen sliding-sync
// snapshots and per-view cursor state stored through the state store's
// custom key-value capability.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps persisted snapshots byte-comparable across runs.
//
// Identifier types from lib/ref implement encoding.TextMarshaler and
// serialize as CBOR text strings; map keys of ref types round-trip
// through their canonical string form.
package codec
