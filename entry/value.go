// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry // import "github.com/logmerge/multiline/entry"

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Kind classifies a field value.
type Kind int

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMap
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMap:
		return "map"
	default:
		return "other"
	}
}

// KindOf returns the kind of a field value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindMissing
	case string, []byte:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return KindNumber
	case bool:
		return KindBool
	case []any, []string, []int, []float64:
		return KindSequence
	case map[string]any, map[string]string:
		return KindMap
	default:
		return KindOther
	}
}

// IsScalar reports whether the value can be matched as plain text.
func IsScalar(v any) bool {
	switch KindOf(v) {
	case KindString, KindNumber, KindBool:
		return true
	default:
		return false
	}
}

// Text renders a scalar value as text. The second return value is false for
// missing values, sequences and maps.
func Text(v any) (string, bool) {
	switch typed := v.(type) {
	case string:
		return typed, true
	case []byte:
		return string(typed), true
	case bool:
		return strconv.FormatBool(typed), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32), true
	case json.Number:
		return typed.String(), true
	}
	if KindOf(v) == KindNumber {
		return fmt.Sprint(v), true
	}
	return "", false
}

// Stringify renders any value as text, falling back to JSON for
// sequences and maps.
func Stringify(v any) string {
	if s, ok := Text(v); ok {
		return s
	}
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Fold merges value into existing following list semantics: a value that
// is already present is ignored, a different one turns existing into an
// ordered list of distinct values. A list is never appended to in place.
func Fold(existing, value any) any {
	list, isList := existing.([]any)
	if !isList {
		if reflect.DeepEqual(existing, value) {
			return existing
		}
		return []any{existing, value}
	}
	for _, v := range list {
		if reflect.DeepEqual(v, value) {
			return list
		}
	}
	out := make([]any, len(list), len(list)+1)
	copy(out, list)
	return append(out, value)
}
