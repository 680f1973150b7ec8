// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for state-store misuse. Compare with errors.Is.
var (
	// ErrNoSession is returned when room creation is attempted before
	// any session has been installed via Store.RestoreSession.
	ErrNoSession = errors.New("store: no active session installed")

	// ErrStoreLocked is returned by encrypted backends when the store
	// is locked with a passphrase and an incorrect passphrase was
	// given.
	ErrStoreLocked = errors.New("store: store is locked")

	// ErrNotEncrypted is returned by backends when an unencrypted
	// store is opened with a passphrase.
	ErrNotEncrypted = errors.New("store: store is not encrypted but a passphrase was given")
)

// ErrorKind classifies a StoreError.
type ErrorKind uint8

const (
	// KindBackend is an opaque failure in the underlying storage
	// engine.
	KindBackend ErrorKind = iota + 1

	// KindCodec is a serialization or deserialization failure on a
	// persisted record.
	KindCodec

	// KindIdentifier is a malformed Matrix identifier read from
	// storage.
	KindIdentifier

	// KindEncryption is a failure encrypting or decrypting stored
	// data.
	KindEncryption

	// KindRedaction is a failed event redaction inside the store.
	// This should never happen in normal operation — treat it as a
	// defect signal, not a recoverable condition.
	KindRedaction
)

// String returns the human-readable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindBackend:
		return "backend"
	case KindCodec:
		return "codec"
	case KindIdentifier:
		return "identifier"
	case KindEncryption:
		return "encryption"
	case KindRedaction:
		return "redaction"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// StoreError wraps a failure from a StateStore implementation with its
// classification. Callers use errors.As to extract the kind:
//
//	var storeErr *StoreError
//	if errors.As(err, &storeErr) && storeErr.Kind == store.KindCodec { ... }
type StoreError struct {
	Kind ErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// BackendError wraps err as an opaque storage-engine failure.
func BackendError(err error) error {
	return &StoreError{Kind: KindBackend, Err: err}
}

// CodecError wraps err as a serialization failure on a persisted
// record.
func CodecError(err error) error {
	return &StoreError{Kind: KindCodec, Err: err}
}

// IdentifierError wraps err as a malformed-identifier failure.
func IdentifierError(err error) error {
	return &StoreError{Kind: KindIdentifier, Err: err}
}

// IsKind checks whether err is a *StoreError with the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind == kind
	}
	return false
}
