// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main // import "github.com/logmerge/multiline/cmd/multiline"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/logmerge/multiline/entry"
	"github.com/logmerge/multiline/operator"
	"github.com/logmerge/multiline/operator/transformer/multiline"
)

const workerQueueSize = 256

// Run merges the records read from inputs (stdin when empty) and writes them
// to stdout until every input is consumed or ctx is cancelled. Buffered
// records are always flushed before Run returns.
func Run(ctx context.Context, cfg *Config, inputs []string, stdin io.Reader, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return run(ctx, cfg, logger, inputs, stdin, stdout)
}

func run(ctx context.Context, cfg *Config, logger *zap.Logger, inputs []string, stdin io.Reader, stdout io.Writer) (err error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	op, err := buildOperator(cfg.ConfigFile, operator.Settings{
		Logger:     logger,
		Registerer: reg,
		Clock:      clockwork.NewRealClock(),
	})
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		shutdown := serveMetrics(ln, reg, logger)
		defer func() { err = multierr.Append(err, shutdown()) }()
	}

	w := newWriter(stdout, cfg.EmitMetadata, logger)
	op.SetOutput(w.consume)
	if err := op.Start(); err != nil {
		return multierr.Append(err, w.close())
	}

	p := newPipeline(op, cfg.Workers, logger)
	readErr := p.feed(ctx, inputs, stdin)
	p.close()

	stopErr := op.Stop()
	writeErr := w.close()

	if errors.Is(readErr, context.Canceled) {
		logger.Info("Interrupted, buffered records were flushed")
		readErr = nil
	}
	return multierr.Combine(readErr, stopErr, writeErr)
}

// pipeline fans records out to workers. Every record of a stream is routed to
// the same worker so each stream is ingested in input order.
type pipeline struct {
	op     *multiline.Transformer
	queues []chan *entry.Entry
	wg     sync.WaitGroup
	logger *zap.Logger
}

func newPipeline(op *multiline.Transformer, workers int, logger *zap.Logger) *pipeline {
	p := &pipeline{
		op:     op,
		queues: make([]chan *entry.Entry, workers),
		logger: logger,
	}
	for i := range p.queues {
		p.queues[i] = make(chan *entry.Entry, workerQueueSize)
		p.wg.Add(1)
		go p.work(p.queues[i], logger.With(zap.Int("worker", i)))
	}
	return p
}

func (p *pipeline) work(queue <-chan *entry.Entry, logger *zap.Logger) {
	defer p.wg.Done()
	ctx := context.Background()
	for e := range queue {
		if err := p.op.Process(ctx, e); err != nil {
			logger.Error("Failed to process record", zap.Error(err))
		}
	}
}

func (p *pipeline) dispatch(ctx context.Context, e *entry.Entry) error {
	key := p.op.KeyOf(e)
	queue := p.queues[xxhash.Sum64String(string(key))%uint64(len(p.queues))]
	select {
	case queue <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeline) feed(ctx context.Context, inputs []string, stdin io.Reader) error {
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	for _, name := range inputs {
		if err := p.feedOne(ctx, name, stdin); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) feedOne(ctx context.Context, name string, stdin io.Reader) (err error) {
	r, err := openInput(name, stdin)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, r.Close()) }()

	logger := p.logger.With(zap.String("input", name))
	return readEntries(ctx, r, logger, func(e *entry.Entry) error {
		return p.dispatch(ctx, e)
	}, func(lineNo int, err error) {
		logger.Warn("Skipping undecodable line", zap.Int("line", lineNo), zap.Error(err))
	})
}

// close waits until the workers have processed every queued record.
func (p *pipeline) close() {
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
}

// writer serializes records from any goroutine onto a single output stream.
type writer struct {
	records chan []*entry.Entry
	done    chan struct{}
	enc     *encoder
	logger  *zap.Logger
	err     error
}

func newWriter(out io.Writer, emitMetadata bool, logger *zap.Logger) *writer {
	w := &writer{
		records: make(chan []*entry.Entry, workerQueueSize),
		done:    make(chan struct{}),
		enc:     newEncoder(out, emitMetadata),
		logger:  logger,
	}
	go w.loop()
	return w
}

func (w *writer) consume(_ context.Context, entries []*entry.Entry) {
	w.records <- entries
}

func (w *writer) loop() {
	defer close(w.done)
	for entries := range w.records {
		for _, e := range entries {
			if err := w.enc.encode(e); err != nil && w.err == nil {
				w.err = fmt.Errorf("write record: %w", err)
				w.logger.Error("Failed to write record", zap.Error(err))
			}
		}
		if len(w.records) == 0 {
			w.err = multierr.Append(w.err, w.enc.flush())
		}
	}
}

// close writes every pending record and returns the first write error.
func (w *writer) close() error {
	close(w.records)
	<-w.done
	return multierr.Append(w.err, w.enc.flush())
}

// serveMetrics exposes reg on ln under /metrics until the returned function
// is called.
func serveMetrics(ln net.Listener, reg *prometheus.Registry, logger *zap.Logger) func() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("Serving metrics", zap.String("addr", ln.Addr().String()))

	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
