// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"strings"
	"time"

	"github.com/logmerge/multiline/entry"
)

type what int

const (
	whatPrevious what = iota
	whatNext
)

// Emission reasons, also used as the reason label of the emitted records counter.
const (
	reasonMatch       = "match"
	reasonPassthrough = "passthrough"
	reasonMaxLines    = "max_lines"
	reasonMaxAge      = "max_age"
	reasonMaxStreams  = "max_streams"
	reasonShutdown    = "shutdown"
)

// buffer accumulates the lines of one stream until the group is complete.
// It is only touched while holding the lock of the shard that owns it, or
// after it has been removed from the table.
type buffer struct {
	key       StreamKey
	seq       uint64
	carrier   *entry.Entry
	lines     []string
	count     int
	lastTouch time.Time
}

// result is what a single step of the merge produced.
type result struct {
	emitted    *entry.Entry
	reason     string
	suppressed bool
}

type merger struct {
	what        what
	maxLines    int
	dedup       duplicateFilter
	separator   string
	source      entry.Field
	mergeFields bool
	decorate    *decorator
}

// step applies one line to the current buffer of its stream and returns the
// buffer that should remain in the table (nil when the stream has nothing
// open afterwards).
func (m *merger) step(cur *buffer, fresh func() *buffer, e *entry.Entry, text string, matched bool, now time.Time) (*buffer, result) {
	if m.what == whatNext {
		return m.stepNext(cur, fresh, e, text, matched, now)
	}
	return m.stepPrevious(cur, fresh, e, text, matched, now)
}

func (m *merger) stepPrevious(cur *buffer, fresh func() *buffer, e *entry.Entry, text string, matched bool, now time.Time) (*buffer, result) {
	if cur == nil {
		return m.start(fresh(), e, text, now), result{}
	}

	if !matched {
		res := result{emitted: m.flush(cur), reason: reasonMatch}
		return m.start(fresh(), e, text, now), res
	}

	res := result{suppressed: !m.append(cur, e, text, now)}
	if cur.count >= m.maxLines {
		res.emitted, res.reason = m.flush(cur), reasonMaxLines
		return nil, res
	}
	return cur, res
}

func (m *merger) stepNext(cur *buffer, fresh func() *buffer, e *entry.Entry, text string, matched bool, now time.Time) (*buffer, result) {
	if cur == nil {
		if !matched {
			return nil, result{emitted: e, reason: reasonPassthrough}
		}
		return m.start(fresh(), e, text, now), result{}
	}

	res := result{suppressed: !m.append(cur, e, text, now)}
	switch {
	case !matched:
		res.emitted, res.reason = m.flush(cur), reasonMatch
		return nil, res
	case cur.count >= m.maxLines:
		res.emitted, res.reason = m.flush(cur), reasonMaxLines
		return nil, res
	}
	return cur, res
}

func (m *merger) start(b *buffer, e *entry.Entry, text string, now time.Time) *buffer {
	b.carrier = e
	b.lines = append(b.lines[:0], text)
	b.count = 1
	b.lastTouch = now
	return b
}

// append adds a continuation line and reports whether its text was retained.
func (m *merger) append(b *buffer, e *entry.Entry, text string, now time.Time) bool {
	b.count++
	b.lastTouch = now

	if m.mergeFields {
		m.foldFields(b.carrier, e)
	}

	if !m.dedup.retain(b.lines, text) {
		return false
	}
	b.lines = append(b.lines, text)
	return true
}

// foldFields merges the non-source top level fields and tags of e into the
// carrier. Values are copied so the carrier never shares storage with e.
func (m *merger) foldFields(carrier, e *entry.Entry) {
	for name, value := range e.Fields {
		if !m.source.IsMetadata() && len(m.source.Keys) > 0 && m.source.Keys[0] == name {
			continue
		}
		value = entry.CopyValue(value)
		if existing, ok := carrier.Fields[name]; ok {
			value = entry.Fold(existing, value)
		}
		carrier.AddField(name, value)
	}
	for _, tag := range e.Tags {
		carrier.AddTag(tag)
	}
}

// flush writes the joined lines into the carrier's source field and returns
// the carrier. The buffer must not be used afterwards.
func (m *merger) flush(b *buffer) *entry.Entry {
	carrier := b.carrier
	// The source was read from the carrier as a scalar, so Set cannot fail here.
	_ = carrier.Set(m.source, strings.Join(b.lines, m.separator))
	m.decorate.apply(carrier)

	b.carrier = nil
	b.lines = nil
	return carrier
}
