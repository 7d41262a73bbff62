// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

type telemetry struct {
	linesIngested        prometheus.Counter
	recordsEmitted       *prometheus.CounterVec
	duplicatesSuppressed prometheus.Counter
	openStreams          prometheus.GaugeFunc
}

// newTelemetry creates the operator's collectors and registers them on reg.
// With a nil reg the collectors still count but are not exported.
func newTelemetry(reg prometheus.Registerer, operatorID string, openStreams func() float64) (*telemetry, error) {
	labels := prometheus.Labels{"operator_id": operatorID}

	tel := &telemetry{
		linesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "multiline_lines_ingested_total",
			Help:        "Lines handed to the multiline engine.",
			ConstLabels: labels,
		}),
		recordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "multiline_records_emitted_total",
			Help:        "Records emitted by the multiline engine, by what caused the emission.",
			ConstLabels: labels,
		}, []string{"reason"}),
		duplicatesSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "multiline_duplicates_suppressed_total",
			Help:        "Lines counted towards a group but not retained because they repeated the previous line.",
			ConstLabels: labels,
		}),
		openStreams: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "multiline_open_streams",
			Help:        "Streams that currently hold a partially merged record.",
			ConstLabels: labels,
		}, openStreams),
	}

	if reg == nil {
		return tel, nil
	}

	var (
		errs       error
		registered []prometheus.Collector
	)
	for _, c := range tel.collectors() {
		if err := reg.Register(c); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		registered = append(registered, c)
	}
	if errs != nil {
		for _, c := range registered {
			reg.Unregister(c)
		}
		return nil, errs
	}
	return tel, nil
}

func (t *telemetry) collectors() []prometheus.Collector {
	return []prometheus.Collector{t.linesIngested, t.recordsEmitted, t.duplicatesSuppressed, t.openStreams}
}

func (t *telemetry) emitted(reason string, n int) {
	if n > 0 {
		t.recordsEmitted.WithLabelValues(reason).Add(float64(n))
	}
}
