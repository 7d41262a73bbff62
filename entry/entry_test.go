// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2020, time.April, 11, 21, 34, 1, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = time.Now }()

	e := NewWithMessage("hello")
	require.Equal(t, now, e.ObservedTimestamp)
	require.Equal(t, map[string]any{"message": "hello"}, e.Fields)
	require.Nil(t, e.Tags)
	require.Nil(t, e.Metadata)
}

func TestTags(t *testing.T) {
	e := New()
	e.AddTag("dummy")
	e.AddTag("nope")
	e.AddTag("dummy")
	require.Equal(t, []string{"dummy", "nope"}, e.Tags)
	require.True(t, e.HasTag("nope"))

	e.RemoveTag("dummy")
	require.Equal(t, []string{"nope"}, e.Tags)
	require.False(t, e.HasTag("dummy"))

	e.RemoveTag("missing")
	require.Equal(t, []string{"nope"}, e.Tags)
}
