// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry // import "github.com/logmerge/multiline/entry"

import (
	"maps"
	"slices"
)

// CopyValue returns a deep copy of v. Maps and sequences are copied
// recursively, so the result never shares storage with v. Any other value
// is returned as is.
func CopyValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = CopyValue(item)
		}
		return out
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CopyValue(item)
		}
		return out
	case map[string]string:
		return maps.Clone(typed)
	case []string:
		return slices.Clone(typed)
	case []byte:
		return slices.Clone(typed)
	case []int:
		return slices.Clone(typed)
	case []float64:
		return slices.Clone(typed)
	}
	return v
}
