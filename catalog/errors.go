// Copyright 2024 The Ribasim-Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package catalog

import "strings"

// MultiError collects every schema/validation error found during Load so
// they are reported together rather than failing on the first one,
// wherever collecting them all is feasible.
type MultiError []error

func (m MultiError) Error() string {
	lines := make([]string, len(m))
	for i, e := range m {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
