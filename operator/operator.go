// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package operator // import "github.com/logmerge/multiline/operator"

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/logmerge/multiline/entry"
)

// Settings carries the ambient dependencies handed to an operator at build time.
type Settings struct {
	// Logger is required.
	Logger *zap.Logger
	// Registerer receives the operator's metrics. Metrics are still tracked
	// when it is nil, they are simply not exported.
	Registerer prometheus.Registerer
	// Clock drives timestamps and periodic work. Defaults to the real clock.
	Clock clockwork.Clock
}

// NewNopSettings returns settings suitable for tests: a no-op logger,
// no metrics registry and the real clock.
func NewNopSettings() Settings {
	return Settings{
		Logger: zap.NewNop(),
		Clock:  clockwork.NewRealClock(),
	}
}

// Consumer receives records emitted by an operator.
type Consumer func(ctx context.Context, entries []*entry.Entry)

// Operator is a log processing unit that can be started, fed and stopped.
type Operator interface {
	// ID returns the id of the operator.
	ID() string
	// Type returns the type of the operator.
	Type() string

	// Start will start the operator.
	Start() error
	// Stop will stop the operator. Buffered data is emitted before it returns.
	Stop() error

	// SetOutput sets the consumer of emitted records.
	SetOutput(Consumer)
	// Process will process an entry and emit any completed record.
	Process(ctx context.Context, e *entry.Entry) error

	// Logger returns the operator's logger
	Logger() *zap.SugaredLogger
}

// Builder is an entity that can build a single operator
type Builder interface {
	ID() string
	Type() string
	Build(Settings) (Operator, error)
}
