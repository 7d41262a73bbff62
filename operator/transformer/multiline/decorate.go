// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"github.com/logmerge/multiline/entry"
)

type fieldValue struct {
	field entry.Field
	value string
}

// decorator holds the tag and field changes applied to records leaving a buffer.
type decorator struct {
	addFields  []fieldValue
	addTags    []string
	removeTags []string
}

// apply mutates e in place. A nil decorator does nothing.
//
// A field that already holds a different value is turned into a list of
// distinct values rather than overwritten.
func (d *decorator) apply(e *entry.Entry) {
	if d == nil {
		return
	}

	for _, fv := range d.addFields {
		existing, ok := e.Get(fv.field)
		if !ok {
			_ = e.Set(fv.field, fv.value)
			continue
		}
		_ = e.Set(fv.field, entry.Fold(existing, fv.value))
	}

	for _, tag := range d.addTags {
		e.AddTag(tag)
	}
	for _, tag := range d.removeTags {
		e.RemoveTag(tag)
	}
}
