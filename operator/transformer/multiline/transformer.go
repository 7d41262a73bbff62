// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/logmerge/multiline/entry"
	"github.com/logmerge/multiline/operator/helper"
)

// ErrStopped is returned for records handed to a transformer after Stop.
var ErrStopped = errors.New("multiline operator is stopped")

// Transformer merges consecutive lines of a stream into single records.
//
// Ingest may be called from many goroutines at once. Lines of one stream are
// merged in the order their Ingest calls acquire the stream, so callers that
// need arrival order must feed each stream from a single goroutine.
type Transformer struct {
	helper.TransformerOperator

	matcher    *matcher
	keyer      streamKeyer
	merger     *merger
	table      *bufferTable
	scheduler  *flushScheduler
	maxAge     time.Duration
	maxStreams int
	telemetry  *telemetry

	// quiesce is held for reading by everything that touches the table and
	// for writing by Stop, so the final drain sees no ingest in flight.
	quiesce sync.RWMutex
	stopped bool

	// held keeps records that were flushed without a caller to take them,
	// until the next Flush returns them.
	heldMu sync.Mutex
	held   []*entry.Entry
}

// Start starts the periodic flush, if enabled.
func (t *Transformer) Start() error {
	if t.scheduler != nil {
		t.scheduler.start()
	}
	return nil
}

// Stop stops the periodic flush, waits for in-flight records and writes every
// partially merged record to the output. Without an output the records are
// kept for Flush and the returned error wraps helper.ErrNoOutput.
func (t *Transformer) Stop() error {
	if t.scheduler != nil {
		t.scheduler.stop()
	}

	t.quiesce.Lock()
	defer t.quiesce.Unlock()
	if t.stopped {
		return nil
	}
	t.stopped = true

	entries := append(t.takeHeld(), t.flushBuffers(t.table.drain(), reasonShutdown)...)
	return t.deliver(context.Background(), entries)
}

// KeyOf returns the stream key the transformer assigns to e.
func (t *Transformer) KeyOf(e *entry.Entry) StreamKey {
	return t.keyer.KeyOf(e)
}

// Process ingests e and writes the records it completes to the output. The
// output is called before Process returns.
func (t *Transformer) Process(ctx context.Context, e *entry.Entry) error {
	t.quiesce.RLock()
	defer t.quiesce.RUnlock()
	if t.stopped {
		return ErrStopped
	}

	out, overflow := t.ingest(ctx, e)
	if out != nil {
		overflow = append(overflow, out)
	}
	return t.deliver(ctx, overflow)
}

// Ingest merges e into its stream and returns the record completed by it, if
// any. Records that cannot be merged are handled by the on_error policy and
// never reported as errors; the only error is ErrStopped. Records flushed
// because max_streams was reached are returned by the next Flush.
func (t *Transformer) Ingest(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	t.quiesce.RLock()
	defer t.quiesce.RUnlock()
	if t.stopped {
		return nil, ErrStopped
	}

	out, overflow := t.ingest(ctx, e)
	t.hold(overflow)
	return out, nil
}

// ingest returns the record completed by e and, separately, the records
// force-flushed to make room for a new stream.
func (t *Transformer) ingest(ctx context.Context, e *entry.Entry) (*entry.Entry, []*entry.Entry) {
	t.telemetry.linesIngested.Inc()

	skip, err := t.Skip(ctx, e)
	if err != nil {
		return t.passthrough(t.HandleEntryError(ctx, e, err)), nil
	}
	if skip {
		return t.passthrough(e), nil
	}

	text, matched, err := t.matcher.Match(e)
	if err != nil {
		return t.passthrough(t.HandleEntryError(ctx, e, err)), nil
	}

	key := t.keyer.KeyOf(e)
	var overflow []*entry.Entry
	if t.maxStreams > 0 && t.table.len() >= t.maxStreams && !t.table.has(key) {
		t.Errorw("Open streams exceed max_streams. Flushing all buffered records. Consider increasing max_streams",
			"max_streams", t.maxStreams)
		overflow = t.flushBuffers(t.table.drain(), reasonMaxStreams)
	}

	now := t.Clock.Now()
	var res result
	t.table.update(key, func(cur *buffer) *buffer {
		next, r := t.merger.step(cur, func() *buffer { return t.table.newBuffer(key) }, e, text, matched, now)
		res = r
		return next
	})

	if res.suppressed {
		t.telemetry.duplicatesSuppressed.Inc()
	}
	if res.emitted == nil {
		return nil, overflow
	}
	if res.reason == reasonMaxLines {
		t.Debugw("Stream reached max_lines, flushing", "stream", string(key))
	}
	t.telemetry.emitted(res.reason, 1)
	return res.emitted, overflow
}

func (t *Transformer) passthrough(e *entry.Entry) *entry.Entry {
	if e != nil {
		t.telemetry.emitted(reasonPassthrough, 1)
	}
	return e
}

// Flush removes buffers from the table and returns their merged records.
// With final set every buffer is flushed, otherwise only the buffers that
// have not received a line for at least max_age. Records held back since the
// last Flush come first.
func (t *Transformer) Flush(final bool) []*entry.Entry {
	t.quiesce.RLock()
	defer t.quiesce.RUnlock()

	held := t.takeHeld()
	if final {
		return append(held, t.flushBuffers(t.table.drain(), reasonShutdown)...)
	}

	now := t.Clock.Now()
	expired := t.table.sweep(func(b *buffer) bool {
		return now.Sub(b.lastTouch) >= t.maxAge
	})
	return append(held, t.flushBuffers(expired, reasonMaxAge)...)
}

func (t *Transformer) flushExpired(ctx context.Context) {
	if err := t.deliver(ctx, t.Flush(false)); err != nil {
		t.Debugw("Expired records kept until the next Flush", "error", err)
	}
}

// deliver writes entries to the output, holding them for the next Flush when
// there is no output to take them.
func (t *Transformer) deliver(ctx context.Context, entries []*entry.Entry) error {
	err := t.Write(ctx, entries...)
	if errors.Is(err, helper.ErrNoOutput) {
		t.hold(entries)
	}
	return err
}

func (t *Transformer) hold(entries []*entry.Entry) {
	if len(entries) == 0 {
		return
	}
	t.heldMu.Lock()
	t.held = append(t.held, entries...)
	t.heldMu.Unlock()
}

func (t *Transformer) takeHeld() []*entry.Entry {
	t.heldMu.Lock()
	defer t.heldMu.Unlock()
	held := t.held
	t.held = nil
	return held
}

func (t *Transformer) flushBuffers(buffers []*buffer, reason string) []*entry.Entry {
	if len(buffers) == 0 {
		return nil
	}

	entries := make([]*entry.Entry, 0, len(buffers))
	for _, b := range buffers {
		entries = append(entries, t.merger.flush(b))
	}
	t.telemetry.emitted(reason, len(entries))
	t.Debugw("Flushed buffered records", "count", len(entries), "reason", reason)
	return entries
}
