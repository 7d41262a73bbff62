// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopyValue(t *testing.T) {
	cases := []struct {
		name  string
		value any
	}{
		{"String", "test"},
		{"Bool", true},
		{"Nil", nil},
		{"Number", json.Number("12345678901234567890")},
		{"StringArray", []string{"a", "b"}},
		{"Bytes", []byte("raw")},
		{"Ints", []int{1, 2}},
		{"InterfaceArray", []any{"test", true, 5}},
		{"StringMap", map[string]string{"test": "value"}},
		{"InterfaceMap", map[string]any{"test": 5}},
		{"NilMap", map[string]any(nil)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.value, CopyValue(tc.value))
		})
	}
}

func TestCopyValueIsDeep(t *testing.T) {
	value := map[string]any{
		"key":  []any{"a", map[string]any{"inner": "b"}},
		"tags": []string{"x"},
	}
	copied := CopyValue(value).(map[string]any)
	copied["key"].([]any)[1].(map[string]any)["inner"] = "c"
	copied["tags"].([]string)[0] = "y"

	require.Equal(t, "b", value["key"].([]any)[1].(map[string]any)["inner"])
	require.Equal(t, []string{"x"}, value["tags"])
}
