// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

// ThumbnailSize selects a server-generated thumbnail rendition of a
// media item.
type ThumbnailSize struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`

	// Method is the scaling method, "crop" or "scale".
	Method string `json:"method"`
}

// MediaRequest is the descriptor keying the media blob capability: a
// content URI plus the requested rendition. The zero Thumbnail pointer
// means the full original file.
type MediaRequest struct {
	URI       ref.MxcURI     `json:"uri"`
	Thumbnail *ThumbnailSize `json:"thumbnail,omitempty"`
}

// mediaDomainKey is the 32-byte key for BLAKE3 keyed hashing of media
// request descriptors. Domain separation keeps media cache keys from
// colliding with any other keyed hash of the same bytes. The value is
// the ASCII domain name zero-padded to 32 bytes, readable in hex dumps
// without weakening the hash (keyed BLAKE3 treats the key as opaque).
var mediaDomainKey = [32]byte{
	'm', 'a', 't', 'r', 'i', 'x', '-', 's', 'd', 'k', '.',
	'm', 'e', 'd', 'i', 'a', '.', 'r', 'e', 'q', 'u', 'e', 's', 't',
	0, 0, 0, 0, 0, 0, 0, 0,
}

// CacheKey returns the stable storage key for this request: the hex
// form of a keyed BLAKE3 digest over the URI and rendition fields.
// Identical requests always produce identical keys; the full file and
// each thumbnail rendition of the same URI produce distinct keys.
func (r *MediaRequest) CacheKey() string {
	hasher, err := blake3.NewKeyed(mediaDomainKey[:])
	if err != nil {
		// The key is a fixed 32-byte constant — NewKeyed cannot fail.
		panic(fmt.Sprintf("store: media hasher init: %v", err))
	}

	uri := r.URI.String()
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(uri)))
	hasher.Write(length[:])
	hasher.Write([]byte(uri))

	if r.Thumbnail != nil {
		var rendition [8]byte
		binary.BigEndian.PutUint32(rendition[:4], r.Thumbnail.Width)
		binary.BigEndian.PutUint32(rendition[4:], r.Thumbnail.Height)
		hasher.Write(rendition[:])
		hasher.Write([]byte(r.Thumbnail.Method))
	}

	digest := hasher.Sum(nil)
	return hex.EncodeToString(digest)
}
