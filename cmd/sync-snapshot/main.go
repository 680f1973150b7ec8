// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// sync-snapshot inspects persisted sliding-sync snapshot records.
//
// By default it reads a CBOR blob (from a file argument or stdin) and
// prints RFC 8949 Extended Diagnostic Notation, which preserves CBOR
// type information that a JSON dump would flatten. With --view the
// blob is decoded as a per-view record instead and printed as a
// human-readable summary: cursor, room-id window, and cached room
// payload sizes.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bjorn-ove/matrix-sdk-go/lib/codec"
	"github.com/bjorn-ove/matrix-sdk-go/lib/ref"
)

func main() {
	os.Exit(run())
}

func run() int {
	var viewMode bool

	flagSet := pflag.NewFlagSet("sync-snapshot", pflag.ContinueOnError)
	flagSet.BoolVar(&viewMode, "view", false, "decode as a per-view record and print a summary")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: sync-snapshot [--view] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Reads a snapshot blob from file (or stdin) and prints CBOR\ndiagnostic notation, or a typed per-view summary with --view.\n\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	data, err := readInput(flagSet.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if len(data) == 0 {
		fmt.Fprintf(os.Stderr, "error: empty input: expected a CBOR snapshot record\n")
		return 2
	}

	if viewMode {
		err = printViewSummary(os.Stdout, data)
	} else {
		err = printDiagnostic(os.Stdout, data)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func readInput(args []string) ([]byte, error) {
	switch len(args) {
	case 0:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	case 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		return data, nil
	default:
		return nil, fmt.Errorf("at most one file argument, got %d", len(args))
	}
}

// printDiagnostic writes diagnostic notation, one line per item, so
// CBOR sequences (RFC 8742) come out line per record.
func printDiagnostic(w io.Writer, data []byte) error {
	remaining := data
	for len(remaining) > 0 {
		notation, rest, err := codec.DiagnoseFirst(remaining)
		if err != nil {
			offset := len(data) - len(remaining)
			return fmt.Errorf("diagnose CBOR at byte %d: %w", offset, err)
		}
		if _, err := fmt.Fprintln(w, notation); err != nil {
			return err
		}
		remaining = rest
	}
	return nil
}

// viewRecord mirrors the per-view snapshot layout. Kept local: the
// snapshot format has no versioning, so this tool decodes exactly
// what the session persists, nothing more.
type viewRecord struct {
	RoomsCount int                      `cbor:"rooms_count"`
	RoomsList  []ref.RoomID             `cbor:"rooms_list"`
	Rooms      map[ref.RoomID]roomEntry `cbor:"rooms"`
}

type roomEntry struct {
	RoomID    ref.RoomID         `cbor:"room_id"`
	Name      string             `cbor:"name,omitempty"`
	PrevBatch string             `cbor:"prev_batch,omitempty"`
	Timeline  []codec.RawMessage `cbor:"timeline,omitempty"`
}

func printViewSummary(w io.Writer, data []byte) error {
	var record viewRecord
	if err := codec.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("decode per-view record: %w", err)
	}

	fmt.Fprintf(w, "rooms_count: %d\n", record.RoomsCount)
	fmt.Fprintf(w, "window (%d rooms):\n", len(record.RoomsList))
	for _, roomID := range record.RoomsList {
		fmt.Fprintf(w, "  %s\n", roomID)
	}
	fmt.Fprintf(w, "cached payloads (%d rooms):\n", len(record.Rooms))
	for _, roomID := range record.RoomsList {
		room, cached := record.Rooms[roomID]
		if !cached {
			continue
		}
		name := room.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(w, "  %s  %s  prev_batch=%q  timeline=%d events\n",
			room.RoomID, name, room.PrevBatch, len(room.Timeline))
	}
	return nil
}
