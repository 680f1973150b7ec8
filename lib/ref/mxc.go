// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"fmt"
	"strings"
)

// mxcScheme is the URI scheme prefix for Matrix content repository
// references.
const mxcScheme = "mxc://"

// MxcURI is a validated Matrix content URI
// (e.g., "mxc://example.org/FHyPlCeYUSFFxlgbQYZmoEoe").
//
// Content URIs name media uploaded to a homeserver's content
// repository: "mxc://" followed by the server name, a '/', and an
// opaque media ID. The media ID is not interpreted beyond being a
// single non-empty path segment.
//
// MxcURI is an immutable value type. The zero value is not valid;
// use IsZero to check.
type MxcURI struct {
	uri string
}

// ParseMxcURI validates and wraps a raw mxc:// URI string. Returns an
// error if the scheme is wrong, the server name is invalid, or the
// media ID is empty or contains further path separators.
func ParseMxcURI(raw string) (MxcURI, error) {
	if !strings.HasPrefix(raw, mxcScheme) {
		return MxcURI{}, fmt.Errorf("content URI %q: must start with %q", raw, mxcScheme)
	}
	rest := raw[len(mxcScheme):]
	slashIndex := strings.IndexByte(rest, '/')
	if slashIndex < 0 {
		return MxcURI{}, fmt.Errorf("content URI %q: missing media ID segment", raw)
	}
	server := rest[:slashIndex]
	mediaID := rest[slashIndex+1:]
	if err := validateServer(server); err != nil {
		return MxcURI{}, fmt.Errorf("content URI %q: %w", raw, err)
	}
	if mediaID == "" {
		return MxcURI{}, fmt.Errorf("content URI %q: empty media ID", raw)
	}
	if strings.ContainsRune(mediaID, '/') {
		return MxcURI{}, fmt.Errorf("content URI %q: media ID must be a single path segment", raw)
	}
	return MxcURI{uri: raw}, nil
}

// MustParseMxcURI is like ParseMxcURI but panics on error. Use in
// tests and static initialization where the input is known-valid.
func MustParseMxcURI(raw string) MxcURI {
	m, err := ParseMxcURI(raw)
	if err != nil {
		panic(fmt.Sprintf("ref.MustParseMxcURI(%q): %v", raw, err))
	}
	return m
}

// String returns the full content URI string.
func (m MxcURI) String() string { return m.uri }

// IsZero reports whether the MxcURI is the zero value (uninitialized).
func (m MxcURI) IsZero() bool { return m.uri == "" }

// MarshalText implements encoding.TextMarshaler for JSON, CBOR, and
// other text-based serialization formats.
func (m MxcURI) MarshalText() ([]byte, error) {
	if m.uri == "" {
		return []byte{}, nil
	}
	return []byte(m.uri), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Validates the
// content URI format. An empty input produces the zero value.
func (m *MxcURI) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*m = MxcURI{}
		return nil
	}
	parsed, err := ParseMxcURI(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
