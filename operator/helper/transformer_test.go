// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/logmerge/multiline/entry"
	"github.com/logmerge/multiline/operator"
	"github.com/logmerge/multiline/testutil"
)

func TestTransformerConfigMissingBase(t *testing.T) {
	cfg := NewTransformerConfig("test", "")
	_, err := cfg.Build(testutil.NewSettings(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required `type` field.")
}

func TestTransformerConfigValid(t *testing.T) {
	cfg := NewTransformerConfig("test", "test")
	_, err := cfg.Build(testutil.NewSettings(t))
	require.NoError(t, err)
}

func TestTransformerOnErrorDefault(t *testing.T) {
	cfg := NewTransformerConfig("test-id", "test-type")
	transformer, err := cfg.Build(testutil.NewSettings(t))
	require.NoError(t, err)
	require.Equal(t, SendOnError, transformer.OnError)
}

func TestTransformerOnErrorInvalid(t *testing.T) {
	cfg := NewTransformerConfig("test", "test")
	cfg.OnError = "invalid"
	_, err := cfg.Build(testutil.NewSettings(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "operator config has an invalid `on_error` field.")
}

func TestTransformerInvalidIf(t *testing.T) {
	cfg := NewTransformerConfig("test", "test")
	cfg.IfExpr = "fields.message =="
	_, err := cfg.Build(testutil.NewSettings(t))
	require.ErrorContains(t, err, "failed to compile expression")
}

func newObservedTransformer(t *testing.T, onError string) (*TransformerOperator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	set := operator.NewNopSettings()
	set.Logger = zap.New(core)

	cfg := NewTransformerConfig("test-id", "test-type")
	cfg.OnError = onError
	transformer, err := cfg.Build(set)
	require.NoError(t, err)
	return &transformer, logs
}

func TestTransformerHandleEntryError(t *testing.T) {
	cases := []struct {
		onError string
		sent    bool
		level   zapcore.Level
	}{
		{SendOnError, true, zapcore.WarnLevel},
		{SendOnErrorQuiet, true, zapcore.DebugLevel},
		{DropOnError, false, zapcore.WarnLevel},
		{DropOnErrorQuiet, false, zapcore.DebugLevel},
	}

	for _, tc := range cases {
		t.Run(tc.onError, func(t *testing.T) {
			transformer, logs := newObservedTransformer(t, tc.onError)
			e := entry.NewWithMessage("test")
			e.AddTag("input")

			out := transformer.HandleEntryError(context.Background(), e, errors.New("failure"))
			if tc.sent {
				require.Same(t, e, out)
			} else {
				require.Nil(t, out)
			}

			require.Equal(t, 1, logs.Len())
			logged := logs.All()[0]
			require.Equal(t, tc.level, logged.Level)
			require.Equal(t, "Failed to process entry", logged.Message)
			fields := logged.ContextMap()
			require.Equal(t, tc.onError, fields["action"])
			require.Equal(t, "failure", fields["error"])
			require.Equal(t, "test-id", fields["operator_id"])
		})
	}
}

func TestTransformerHandleNilEntry(t *testing.T) {
	transformer, logs := newObservedTransformer(t, SendOnError)
	require.Nil(t, transformer.HandleEntryError(context.Background(), nil, errors.New("failure")))
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestTransformerWrite(t *testing.T) {
	transformer, _ := newObservedTransformer(t, SendOnError)
	ctx := context.Background()

	require.NoError(t, transformer.Write(ctx))
	err := transformer.Write(ctx, entry.NewWithMessage("undelivered"))
	require.ErrorIs(t, err, ErrNoOutput)
	require.ErrorContains(t, err, "1 records not delivered")

	fake := testutil.NewFakeOutput(t)
	transformer.SetOutput(fake.Consume)
	require.NoError(t, transformer.Write(ctx))
	fake.ExpectNoEntry(t, 0)

	first, second := entry.NewWithMessage("one"), entry.NewWithMessage("two")
	require.NoError(t, transformer.Write(ctx, first, second))
	fake.ExpectEntry(t, first)
	fake.ExpectEntry(t, second)
}

func TestTransformerIf(t *testing.T) {
	cases := []struct {
		name      string
		ifExpr    string
		input     string
		skipped   bool
		expectErr bool
	}{
		{"NoIf", "", "test", false, false},
		{"TrueIf", "true", "test", false, false},
		{"FalseIf", "false", "test", true, false},
		{"EvaluatedTrue", "fields.message == 'test'", "test", false, false},
		{"EvaluatedFalse", "fields.message == 'notest'", "test", true, false},
		{"TagMatch", "'java' in tags", "test", true, false},
		{"FailingExpressionEvaluation", "fields.message.test.noexist == 'notest'", "test", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewTransformerConfig("test", "test")
			cfg.IfExpr = tc.ifExpr
			transformer, err := cfg.Build(testutil.NewSettings(t))
			require.NoError(t, err)

			skip, err := transformer.Skip(context.Background(), entry.NewWithMessage(tc.input))
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.skipped, skip)
		})
	}
}
