// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

// duplicateFilter decides whether a line is retained in its buffer.
type duplicateFilter struct {
	allowDuplicates bool
}

// retain reports whether text should be appended after the last retained
// line. With duplicates disallowed, a line identical to the previous retained
// one is dropped so only the edges of a run of repeats are kept.
func (d duplicateFilter) retain(lines []string, text string) bool {
	if d.allowDuplicates || len(lines) == 0 {
		return true
	}
	return lines[len(lines)-1] != text
}
