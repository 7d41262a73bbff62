// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry // import "github.com/logmerge/multiline/entry"

import (
	"slices"
	"time"
)

var timeNow = time.Now

// Entry is a single line record travelling through the pipeline.
//
// Fields holds the content of the record. Tags is an ordered set of labels.
// Metadata travels alongside the record but is not part of its content.
type Entry struct {
	ObservedTimestamp time.Time      `json:"-"                   yaml:"-"`
	Fields            map[string]any `json:"fields,omitempty"    yaml:"fields,omitempty"`
	Tags              []string       `json:"tags,omitempty"      yaml:"tags,omitempty"`
	Metadata          map[string]any `json:"@metadata,omitempty" yaml:"@metadata,omitempty"`
}

// New will create a new entry with the current observed timestamp and no fields.
func New() *Entry {
	return &Entry{
		ObservedTimestamp: timeNow(),
		Fields:            map[string]any{},
	}
}

// NewWithMessage creates an entry holding a single message field.
func NewWithMessage(message string) *Entry {
	e := New()
	e.Fields[DefaultSourceKey] = message
	return e
}

// DefaultSourceKey is the name of the field that carries the raw line when nothing else is configured.
const DefaultSourceKey = "message"

// AddField will add a top level key/value pair to the entry's fields.
func (entry *Entry) AddField(key string, value any) {
	if entry.Fields == nil {
		entry.Fields = make(map[string]any)
	}
	entry.Fields[key] = value
}

// AddMetadata will add a key/value pair to the entry's metadata.
func (entry *Entry) AddMetadata(key string, value any) {
	if entry.Metadata == nil {
		entry.Metadata = make(map[string]any)
	}
	entry.Metadata[key] = value
}

// Get will return the value of a field on the entry, including a boolean indicating if the field exists.
func (entry *Entry) Get(field Field) (any, bool) {
	return field.Get(entry)
}

// Set will set the value of a field on the entry.
func (entry *Entry) Set(field Field, val any) error {
	return field.Set(entry, val)
}

// HasTag reports whether the tag is present.
func (entry *Entry) HasTag(tag string) bool {
	return slices.Contains(entry.Tags, tag)
}

// AddTag appends a tag unless it is already present.
func (entry *Entry) AddTag(tag string) {
	if entry.HasTag(tag) {
		return
	}
	entry.Tags = append(entry.Tags, tag)
}

// RemoveTag removes every occurrence of the tag.
func (entry *Entry) RemoveTag(tag string) {
	entry.Tags = slices.DeleteFunc(entry.Tags, func(t string) bool { return t == tag })
}
