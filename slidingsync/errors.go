// Copyright 2026 The Matrix SDK Go Authors
// SPDX-License-Identifier: Apache-2.0

package slidingsync

import "errors"

// ErrMisconfigured reports an invalid builder configuration, such as
// a view without a name. Wrapped errors carry the detail; test with
// errors.Is.
var ErrMisconfigured = errors.New("slidingsync: misconfigured")
