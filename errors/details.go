// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package errors // import "github.com/logmerge/multiline/errors"

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// ErrorDetails is a map of details for an agent error.
type ErrorDetails map[string]string

// MarshalLogObject will define the representation of details when logging.
func (d ErrorDetails) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		encoder.AddString(k, d[k])
	}
	return nil
}

// createDetails will create details for an error from key/value pairs.
// A trailing key without a value is dropped.
func createDetails(keyValues []string) ErrorDetails {
	details := make(ErrorDetails, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		details[keyValues[i]] = keyValues[i+1]
	}
	return details
}
