// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFields() map[string]any {
	return map[string]any{
		"simple_key": "simple_value",
		"map_key":    nestedMap(),
	}
}

func nestedMap() map[string]any {
	return map[string]any{
		"nested_key": "nested_value",
	}
}

func TestParseField(t *testing.T) {
	cases := []struct {
		name      string
		input     string
		expected  Field
		expectErr bool
	}{
		{"Simple", "message", NewField("message"), false},
		{"Dotted", "a.b", NewField("a", "b"), false},
		{"Bracketed", "[a][b]", NewField("a", "b"), false},
		{"BracketedMetadata", "[@metadata][index]", NewMetadataField("index"), false},
		{"DottedMetadata", "@metadata.type", NewMetadataField("type"), false},
		{"Empty", "", Field{}, true},
		{"EmptyDottedKey", "a..b", Field{}, true},
		{"EmptyBracket", "[a][]", Field{}, true},
		{"Unterminated", "[a][b", Field{}, true},
		{"TrailingGarbage", "[a]b", Field{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseField(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, f)
		})
	}
}

func TestFieldGet(t *testing.T) {
	cases := []struct {
		name        string
		field       Field
		expectedVal any
		expectedOk  bool
	}{
		{"SimpleField", NewField("simple_key"), "simple_value", true},
		{"MapField", NewField("map_key"), nestedMap(), true},
		{"NestedField", NewField("map_key", "nested_key"), "nested_value", true},
		{"MissingField", NewField("invalid"), nil, false},
		{"InvalidField", NewField("simple_key", "nested_key"), nil, false},
		{"MissingMetadata", NewMetadataField("index"), nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New()
			e.Fields = testFields()

			val, ok := e.Get(tc.field)
			assert.Equal(t, tc.expectedOk, ok)
			assert.Equal(t, tc.expectedVal, val)
		})
	}
}

func TestFieldSet(t *testing.T) {
	cases := []struct {
		name     string
		field    Field
		setTo    any
		expected map[string]any
	}{
		{
			"NewValue",
			NewField("new_key"),
			"new_value",
			map[string]any{
				"simple_key": "simple_value",
				"map_key":    nestedMap(),
				"new_key":    "new_value",
			},
		},
		{
			"OverwriteValue",
			NewField("simple_key"),
			"new_value",
			map[string]any{
				"simple_key": "new_value",
				"map_key":    nestedMap(),
			},
		},
		{
			"OverwriteScalarWithMap",
			NewField("simple_key", "inner"),
			"new_value",
			map[string]any{
				"simple_key": map[string]any{"inner": "new_value"},
				"map_key":    nestedMap(),
			},
		},
		{
			"NestedValue",
			NewField("map_key", "other"),
			"x",
			map[string]any{
				"simple_key": "simple_value",
				"map_key": map[string]any{
					"nested_key": "nested_value",
					"other":      "x",
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New()
			e.Fields = testFields()
			require.NoError(t, e.Set(tc.field, tc.setTo))
			require.Equal(t, tc.expected, e.Fields)
		})
	}
}

func TestFieldSetEmpty(t *testing.T) {
	e := New()
	require.Error(t, e.Set(Field{}, "value"))
}

func TestFieldSetMetadata(t *testing.T) {
	e := New()
	require.NoError(t, e.Set(NewMetadataField("index"), "logs-2015.11.19"))
	require.Equal(t, map[string]any{"index": "logs-2015.11.19"}, e.Metadata)
	require.Empty(t, e.Fields)

	val, ok := e.Get(NewMetadataField("index"))
	require.True(t, ok)
	require.Equal(t, "logs-2015.11.19", val)
}

func TestFieldUnmarshal(t *testing.T) {
	var f Field
	require.NoError(t, json.Unmarshal([]byte(`"[@metadata][type]"`), &f))
	require.Equal(t, NewMetadataField("type"), f)

	require.Error(t, json.Unmarshal([]byte(`12`), &f))

	text, err := NewField("a", "b").MarshalText()
	require.NoError(t, err)
	require.Equal(t, "[a][b]", string(text))
}

func TestFieldEqual(t *testing.T) {
	require.True(t, NewField("a", "b").Equal(NewField("a", "b")))
	require.False(t, NewField("a").Equal(NewField("a", "b")))
	require.False(t, NewField("a", "c").Equal(NewField("a", "b")))
}
