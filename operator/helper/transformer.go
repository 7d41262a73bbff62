// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package helper // import "github.com/logmerge/multiline/operator/helper"

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr/vm"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/logmerge/multiline/entry"
	mlerrors "github.com/logmerge/multiline/errors"
	"github.com/logmerge/multiline/operator"
)

// NewTransformerConfig creates a new transformer config with default values
func NewTransformerConfig(operatorID, operatorType string) TransformerConfig {
	return TransformerConfig{
		BasicConfig: NewBasicConfig(operatorID, operatorType),
		OnError:     SendOnError,
	}
}

// TransformerConfig provides a basic implementation of a transformer config.
type TransformerConfig struct {
	BasicConfig `mapstructure:",squash"`
	OnError     string `mapstructure:"on_error"`
	IfExpr      string `mapstructure:"if"`
}

// Build will build a transformer operator.
func (c TransformerConfig) Build(set operator.Settings) (TransformerOperator, error) {
	basicOperator, err := c.BasicConfig.Build(set)
	if err != nil {
		return TransformerOperator{}, mlerrors.WithDetails(err, "operator_id", c.ID())
	}

	switch c.OnError {
	case SendOnError, SendOnErrorQuiet, DropOnError, DropOnErrorQuiet:
	default:
		return TransformerOperator{}, mlerrors.NewError(
			"operator config has an invalid `on_error` field.",
			"ensure that the `on_error` field is set to one of `send`, `send_quiet`, `drop`, `drop_quiet`.",
			"on_error", c.OnError,
		)
	}

	transformerOperator := TransformerOperator{
		BasicOperator: basicOperator,
		OnError:       c.OnError,
	}

	if c.IfExpr != "" {
		compiled, err := ExprCompileBool(c.IfExpr)
		if err != nil {
			return TransformerOperator{}, fmt.Errorf("failed to compile expression '%s': %w", c.IfExpr, err)
		}
		transformerOperator.IfExpr = compiled
	}

	return transformerOperator, nil
}

// TransformerOperator provides a basic implementation of a transformer operator.
type TransformerOperator struct {
	BasicOperator
	OnError string
	IfExpr  *vm.Program

	output operator.Consumer
}

// ErrNoOutput is returned by Write when no consumer has been set.
var ErrNoOutput = errors.New("no output set")

// SetOutput sets the consumer that receives written records. It must be
// called before the operator is started. The consumer may be called while
// the operator holds internal locks, so it must not call back into the
// operator that feeds it.
func (t *TransformerOperator) SetOutput(consumer operator.Consumer) {
	t.output = consumer
}

// Write hands records to the output. Nothing is delivered and ErrNoOutput
// is returned when no output is set.
func (t *TransformerOperator) Write(ctx context.Context, entries ...*entry.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if t.output == nil {
		return fmt.Errorf("%d records not delivered: %w", len(entries), ErrNoOutput)
	}
	t.output(ctx, entries)
	return nil
}

// HandleEntryError applies the on_error strategy to a record that could not
// be processed. It returns the record when it should still be sent on, or
// nil when it should be dropped.
func (t *TransformerOperator) HandleEntryError(_ context.Context, e *entry.Entry, err error) *entry.Entry {
	if e == nil {
		t.Error("got a nil entry, this should not happen and is potentially a bug")
		return nil
	}

	if t.OnError == SendOnErrorQuiet || t.OnError == DropOnErrorQuiet {
		// No need to construct the zap attributes if logging not enabled at debug level.
		if t.Desugar().Core().Enabled(zapcore.DebugLevel) {
			t.Desugar().Debug("Failed to process entry", zapAttributes(e, t.OnError, err)...)
		}
	} else {
		t.Desugar().Warn("Failed to process entry", zapAttributes(e, t.OnError, err)...)
	}

	if t.OnError == SendOnError || t.OnError == SendOnErrorQuiet {
		return e
	}
	return nil
}

// Skip reports whether the record should bypass the operator because its
// "if" condition does not hold. An evaluation failure also skips the record.
func (t *TransformerOperator) Skip(_ context.Context, e *entry.Entry) (bool, error) {
	if t.IfExpr == nil {
		return false, nil
	}

	env := GetExprEnv(e)
	defer PutExprEnv(env)

	matches, err := vm.Run(t.IfExpr, env)
	if err != nil {
		return true, fmt.Errorf("running if expr: %w", err)
	}

	return !matches.(bool), nil
}

func zapAttributes(e *entry.Entry, action string, err error) []zap.Field {
	logFields := make([]zap.Field, 0, 3)
	logFields = append(logFields, zap.Error(err))
	logFields = append(logFields, zap.String("action", action))
	logFields = append(logFields, zap.Time("entry.observed_timestamp", e.ObservedTimestamp))
	if len(e.Tags) > 0 {
		logFields = append(logFields, zap.Strings("entry.tags", e.Tags))
	}
	return logFields
}

// SendOnError specifies an on_error mode for sending entries after an error.
const SendOnError = "send"

// SendOnErrorQuiet specifies an on_error mode for sending entries after an error but without logging on error level
const SendOnErrorQuiet = "send_quiet"

// DropOnError specifies an on_error mode for dropping entries after an error.
const DropOnError = "drop"

// DropOnErrorQuiet specifies an on_error mode for dropping entries after an error but without logging on error level
const DropOnErrorQuiet = "drop_quiet"
