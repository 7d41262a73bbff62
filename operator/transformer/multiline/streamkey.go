// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"strings"

	"github.com/logmerge/multiline/entry"
)

// StreamKey identifies the logical stream a record belongs to. Records with
// equal keys may be merged, records with different keys never are.
type StreamKey string

// DefaultStreamKey is shared by every record when no identity fields are configured.
const DefaultStreamKey StreamKey = "DefaultStreamKey"

// keySeparator joins identity components. It is the ASCII unit separator so
// that ordinary values cannot collide across component boundaries.
const keySeparator = "\x1f"

type streamKeyer struct {
	fields []entry.Field
}

// KeyOf derives the stream key from the configured identity fields. A
// missing field contributes an empty component.
func (k streamKeyer) KeyOf(e *entry.Entry) StreamKey {
	if len(k.fields) == 0 {
		return DefaultStreamKey
	}

	var b strings.Builder
	for i, field := range k.fields {
		if i > 0 {
			b.WriteString(keySeparator)
		}
		if val, ok := e.Get(field); ok {
			b.WriteString(entry.Stringify(val))
		}
	}
	return StreamKey(b.String())
}
