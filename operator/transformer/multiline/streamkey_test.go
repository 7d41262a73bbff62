// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logmerge/multiline/entry"
)

func TestStreamKey(t *testing.T) {
	host := entry.NewField("host")
	path := entry.NewField("log", "file", "path")

	e := entry.NewWithMessage("line")
	e.AddField("host", "web-1")
	require.NoError(t, e.Set(path, "/var/log/app.log"))

	cases := []struct {
		name     string
		fields   []entry.Field
		input    *entry.Entry
		expected StreamKey
	}{
		{
			name:     "NoIdentity",
			input:    e,
			expected: DefaultStreamKey,
		},
		{
			name:     "SingleField",
			fields:   []entry.Field{host},
			input:    e,
			expected: "web-1",
		},
		{
			name:     "NestedField",
			fields:   []entry.Field{host, path},
			input:    e,
			expected: "web-1\x1f/var/log/app.log",
		},
		{
			name:     "MissingField",
			fields:   []entry.Field{entry.NewField("missing"), host},
			input:    e,
			expected: "\x1fweb-1",
		},
		{
			name:   "NonStringValue",
			fields: []entry.Field{entry.NewField("pid")},
			input: func() *entry.Entry {
				e := entry.New()
				e.AddField("pid", float64(42))
				return e
			}(),
			expected: "42",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, streamKeyer{fields: tc.fields}.KeyOf(tc.input))
		})
	}
}

func TestStreamKeyComponentsDoNotCollide(t *testing.T) {
	keyer := streamKeyer{fields: []entry.Field{entry.NewField("a"), entry.NewField("b")}}

	first := entry.New()
	first.AddField("a", "x y")
	first.AddField("b", "z")

	second := entry.New()
	second.AddField("a", "x")
	second.AddField("b", "y z")

	require.NotEqual(t, keyer.KeyOf(first), keyer.KeyOf(second))
}
