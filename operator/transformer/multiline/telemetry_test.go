// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/logmerge/multiline/entry"
	"github.com/logmerge/multiline/testutil"
)

func TestTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	set := testutil.NewSettings(t)
	set.Registerer = reg

	cfg := testConfig(`^\s`, WhatNext)
	cfg.AllowDuplicates = false
	cfg.MaxLines = 3
	op, err := cfg.Build(set)
	require.NoError(t, err)
	tr := op.(*Transformer)
	ctx := context.Background()

	for _, e := range lines("single", "  a", "  a", "end", "  b", "  c", "  d", "  e") {
		_, err := tr.Ingest(ctx, e)
		require.NoError(t, err)
	}
	require.Equal(t, float64(1), promtest.ToFloat64(tr.telemetry.openStreams))

	nonScalar := entry.New()
	nonScalar.AddField("message", []any{"x"})
	_, err = tr.Ingest(ctx, nonScalar)
	require.NoError(t, err)
	tr.Flush(true)

	require.Equal(t, float64(9), promtest.ToFloat64(tr.telemetry.linesIngested))
	require.Equal(t, float64(1), promtest.ToFloat64(tr.telemetry.duplicatesSuppressed))
	require.Equal(t, float64(0), promtest.ToFloat64(tr.telemetry.openStreams))

	expected := `
# HELP multiline_records_emitted_total Records emitted by the multiline engine, by what caused the emission.
# TYPE multiline_records_emitted_total counter
multiline_records_emitted_total{operator_id="multiline",reason="match"} 1
multiline_records_emitted_total{operator_id="multiline",reason="max_lines"} 1
multiline_records_emitted_total{operator_id="multiline",reason="passthrough"} 2
multiline_records_emitted_total{operator_id="multiline",reason="shutdown"} 1
`
	require.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected), "multiline_records_emitted_total"))
	require.Equal(t, 4, promtest.CollectAndCount(tr.telemetry.recordsEmitted))
}

func TestTelemetryDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	set := testutil.NewSettings(t)
	set.Registerer = reg

	_, err := testConfig(`^\s`, WhatPrevious).Build(set)
	require.NoError(t, err)

	_, err = testConfig(`^\s`, WhatPrevious).Build(set)
	require.Error(t, err)

	other := NewConfigWithID("other")
	other.Pattern = `^\s`
	other.What = WhatPrevious
	_, err = other.Build(set)
	require.NoError(t, err)
}

func TestTelemetryWithoutRegisterer(t *testing.T) {
	tr := buildTransformer(t, testConfig(`^\s`, WhatPrevious))
	_, err := tr.Ingest(context.Background(), entry.NewWithMessage("a"))
	require.NoError(t, err)
	require.Equal(t, float64(1), promtest.ToFloat64(tr.telemetry.linesIngested))
}
