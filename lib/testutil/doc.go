// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides channel-based test helpers.
//
// Tests that observe asynchronous signals (watch.Cell wakeups) need a
// timeout safety valve so a missed signal fails the test instead of
// hanging it. These helpers encapsulate the select-with-timeout
// pattern so individual tests do not need direct time.After calls.
package testutil
