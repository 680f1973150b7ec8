// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// blobTag identifies the compression algorithm a stored blob uses.
// One tag byte prefixes every blob the memory store holds. These are
// in-memory cache internals, not a persisted format.
type blobTag uint8

const (
	// blobNone is uncompressed data: already-compressed media (PNG,
	// video) where another pass adds CPU cost without shrinking
	// anything.
	blobNone blobTag = 0

	// blobLZ4 is LZ4 block compression: the fast default for binary
	// data of unknown type, such as media blobs.
	blobLZ4 blobTag = 1

	// blobZstd is zstd at default level: better ratios for
	// structured text-like data, used for custom key-value records
	// (serialized snapshots).
	blobZstd blobTag = 2
)

// blobHeaderSize is one tag byte plus the big-endian uint32
// uncompressed length.
const blobHeaderSize = 5

// zstdEncoder and zstdDecoder are reused across calls; both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// encodeBlob compresses data with the preferred algorithm and prefixes
// the tag header. Incompressible data falls back to the none tag, so
// every input round-trips.
func encodeBlob(data []byte, preferred blobTag) []byte {
	var compressed []byte
	tag := blobNone

	switch preferred {
	case blobLZ4:
		bound := lz4.CompressBlockBound(len(data))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(data, destination, nil)
		// CompressBlock returns 0 for incompressible input; also
		// reject output that failed to actually shrink.
		if err == nil && written > 0 && written < len(data) {
			compressed = destination[:written]
			tag = blobLZ4
		}
	case blobZstd:
		candidate := zstdEncoder.EncodeAll(data, nil)
		if len(candidate) < len(data) {
			compressed = candidate
			tag = blobZstd
		}
	}

	if tag == blobNone {
		compressed = data
	}

	blob := make([]byte, blobHeaderSize+len(compressed))
	blob[0] = byte(tag)
	binary.BigEndian.PutUint32(blob[1:blobHeaderSize], uint32(len(data)))
	copy(blob[blobHeaderSize:], compressed)
	return blob
}

// decodeBlob reverses encodeBlob, verifying the recovered length
// against the header.
func decodeBlob(blob []byte) ([]byte, error) {
	if len(blob) < blobHeaderSize {
		return nil, fmt.Errorf("blob too short: %d bytes", len(blob))
	}
	tag := blobTag(blob[0])
	uncompressedSize := int(binary.BigEndian.Uint32(blob[1:blobHeaderSize]))
	payload := blob[blobHeaderSize:]

	switch tag {
	case blobNone:
		if len(payload) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed blob: size %d does not match header %d", len(payload), uncompressedSize)
		}
		result := make([]byte, uncompressedSize)
		copy(result, payload)
		return result, nil

	case blobLZ4:
		destination := make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(payload, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, header says %d", read, uncompressedSize)
		}
		return destination, nil

	case blobZstd:
		destination, err := zstdDecoder.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(destination) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, header says %d", len(destination), uncompressedSize)
		}
		return destination, nil

	default:
		return nil, fmt.Errorf("unknown blob tag: %d", tag)
	}
}
