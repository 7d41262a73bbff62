// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"errors"
	"fmt"

	"github.com/logmerge/multiline/entry"
	"github.com/logmerge/multiline/operator/helper"
)

var errNotScalar = errors.New("source field is not a plain scalar value")

// matcher evaluates the configured pattern against a record's source field.
type matcher struct {
	re     helper.Regexp
	negate bool
	source entry.Field
}

// Match returns the source text and the effective match decision, that is
// the raw pattern result XOR negate. A missing or non-scalar source field
// yields an error wrapping errNotScalar.
func (m *matcher) Match(e *entry.Entry) (string, bool, error) {
	val, ok := e.Get(m.source)
	if !ok {
		return "", false, fmt.Errorf("%w: field '%s' is missing", errNotScalar, m.source)
	}

	text, ok := entry.Text(val)
	if !ok {
		return "", false, fmt.Errorf("%w: field '%s' holds a %s", errNotScalar, m.source, entry.KindOf(val))
	}

	return text, m.re.MatchString(text) != m.negate, nil
}
