// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry // import "github.com/logmerge/multiline/entry"

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MetadataPrefix routes a field to the entry's metadata instead of its content.
const MetadataPrefix = "@metadata"

// Field addresses a value on an entry by a path of map keys.
//
// A field whose first key is "@metadata" addresses Entry.Metadata; every other
// field addresses Entry.Fields.
type Field struct {
	Keys []string
}

// NewField creates a new field from an ordered array of keys.
func NewField(keys ...string) Field {
	return Field{Keys: keys}
}

// NewMetadataField creates a field that addresses the entry's metadata.
func NewMetadataField(keys ...string) Field {
	return Field{Keys: append([]string{MetadataPrefix}, keys...)}
}

// ParseField parses dotted ("a.b") or bracketed ("[a][b]") notation.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Field{}, fmt.Errorf("field is empty")
	}

	if !strings.HasPrefix(s, "[") {
		keys := strings.Split(s, ".")
		for _, k := range keys {
			if k == "" {
				return Field{}, fmt.Errorf("field '%s' contains an empty key", s)
			}
		}
		return Field{Keys: keys}, nil
	}

	var keys []string
	rest := s
	for rest != "" {
		if rest[0] != '[' {
			return Field{}, fmt.Errorf("field '%s' has unexpected character '%c'", s, rest[0])
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Field{}, fmt.Errorf("field '%s' has an unterminated bracket", s)
		}
		key := rest[1:end]
		if key == "" {
			return Field{}, fmt.Errorf("field '%s' contains an empty key", s)
		}
		keys = append(keys, key)
		rest = rest[end+1:]
	}
	return Field{Keys: keys}, nil
}

// IsEmpty reports whether the field addresses nothing.
func (f Field) IsEmpty() bool {
	return len(f.Keys) == 0
}

// IsMetadata reports whether the field addresses the entry's metadata.
func (f Field) IsMetadata() bool {
	return len(f.Keys) > 0 && f.Keys[0] == MetadataPrefix
}

// Equal reports whether both fields address the same path.
func (f Field) Equal(other Field) bool {
	if len(f.Keys) != len(other.Keys) {
		return false
	}
	for i := range f.Keys {
		if f.Keys[i] != other.Keys[i] {
			return false
		}
	}
	return true
}

// String returns the bracketed representation of this field.
func (f Field) String() string {
	var b strings.Builder
	for _, key := range f.Keys {
		b.WriteString("[")
		b.WriteString(key)
		b.WriteString("]")
	}
	return b.String()
}

// root returns the map the field starts from and the remaining keys.
// When create is set, a missing root map is allocated on the entry.
func (f Field) root(entry *Entry, create bool) (map[string]any, []string) {
	if f.IsMetadata() {
		if entry.Metadata == nil && create {
			entry.Metadata = map[string]any{}
		}
		return entry.Metadata, f.Keys[1:]
	}
	if entry.Fields == nil && create {
		entry.Fields = map[string]any{}
	}
	return entry.Fields, f.Keys
}

// Get will retrieve a value from an entry using the field.
// It will return the value and whether the field existed.
func (f Field) Get(entry *Entry) (any, bool) {
	currentMap, keys := f.root(entry, false)
	if len(keys) == 0 {
		if currentMap == nil {
			return nil, false
		}
		return currentMap, true
	}

	var currentValue any = currentMap
	for _, key := range keys {
		m, ok := currentValue.(map[string]any)
		if !ok {
			return nil, false
		}

		currentValue, ok = m[key]
		if !ok {
			return nil, false
		}
	}

	return currentValue, true
}

// Set will set a value on an entry using the field.
// If a key already exists, it will be overwritten. Intermediate values
// that are not maps are replaced with maps.
func (f Field) Set(entry *Entry, value any) error {
	if f.IsEmpty() {
		return fmt.Errorf("can not set a value on an empty field")
	}

	currentMap, keys := f.root(entry, true)
	if len(keys) == 0 {
		m, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("field '%s' can only be set to a map, got '%T'", f, value)
		}
		entry.Metadata = m
		return nil
	}

	for i, key := range keys {
		if i == len(keys)-1 {
			currentMap[key] = value
			break
		}
		currentMap = getNestedMap(currentMap, key)
	}
	return nil
}

// getNestedMap will get a nested map assigned to a key.
// If the map does not exist, it will create and return it.
func getNestedMap(currentMap map[string]any, key string) map[string]any {
	nextMap, ok := currentMap[key].(map[string]any)
	if !ok {
		nextMap = map[string]any{}
		currentMap[key] = nextMap
	}
	return nextMap
}

/****************
  Serialization
****************/

// UnmarshalText parses the field from its textual form. It is used by
// mapstructure decode hooks.
func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalText returns the bracketed form of the field.
func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalJSON will attempt to unmarshal the field from JSON.
func (f *Field) UnmarshalJSON(raw []byte) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("the field is not a string: %w", err)
	}
	return f.UnmarshalText([]byte(value))
}
