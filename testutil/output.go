// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package testutil // import "github.com/logmerge/multiline/testutil"

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/logmerge/multiline/entry"
)

// FakeOutput is an output consumer that records every entry it receives.
type FakeOutput struct {
	Received chan *entry.Entry
	timeout  time.Duration
}

// NewFakeOutput creates a new fake output with a generous receive buffer.
func NewFakeOutput(_ testing.TB) *FakeOutput {
	return &FakeOutput{
		Received: make(chan *entry.Entry, 1000),
		timeout:  time.Second,
	}
}

// Consume satisfies operator.Consumer.
func (f *FakeOutput) Consume(_ context.Context, entries []*entry.Entry) {
	for _, e := range entries {
		f.Received <- e
	}
}

// ExpectEntry expects that an entry will be received by the fake operator within a second
// and that it is equal to the given body
func (f *FakeOutput) ExpectEntry(t testing.TB, expected *entry.Entry) {
	select {
	case e := <-f.Received:
		require.Equal(t, expected, e)
	case <-time.After(f.timeout):
		require.FailNow(t, "Timed out waiting for entry")
	}
}

// ExpectEntries expects that the given entries will be received in any order
func (f *FakeOutput) ExpectEntries(t testing.TB, expected []*entry.Entry) {
	entries := make([]*entry.Entry, 0, len(expected))
	for i := 0; i < len(expected); i++ {
		select {
		case e := <-f.Received:
			entries = append(entries, e)
		case <-time.After(f.timeout):
			require.Fail(t, "Timed out waiting for entry")
			return
		}
	}

	require.ElementsMatch(t, expected, entries)
}

// ExpectMessage expects the next entry to carry the given value in the given field.
func (f *FakeOutput) ExpectMessage(t testing.TB, field entry.Field, expected string) *entry.Entry {
	select {
	case e := <-f.Received:
		val, ok := e.Get(field)
		require.True(t, ok, "field %s missing on emitted entry", field)
		require.Equal(t, expected, val)
		return e
	case <-time.After(f.timeout):
		require.FailNow(t, "Timed out waiting for entry")
		return nil
	}
}

// ExpectNoEntry expects that no entry will be received within the specified time
func (f *FakeOutput) ExpectNoEntry(t testing.TB, timeout time.Duration) {
	select {
	case e := <-f.Received:
		require.FailNow(t, "Should not have received entry", "%v", e)
	case <-time.After(timeout):
		return
	}
}

// Drain returns every entry currently buffered without waiting.
func (f *FakeOutput) Drain() []*entry.Entry {
	var entries []*entry.Entry
	for {
		select {
		case e := <-f.Received:
			entries = append(entries, e)
		default:
			return entries
		}
	}
}
