// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main // import "github.com/logmerge/multiline/cmd/multiline"

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/logmerge/multiline/operator"
	"github.com/logmerge/multiline/operator/helper"
	"github.com/logmerge/multiline/operator/transformer/multiline"
)

const defaultConfigFile = "multiline.yaml"

// Config holds the command line options of the run command.
type Config struct {
	ConfigFile   string
	Workers      int
	LogLevel     string
	MetricsAddr  string
	EmitMetadata bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ConfigFile: defaultConfigFile,
		Workers:    1,
		LogLevel:   "info",
	}
}

// Flags registers config flags.
func (c *Config) Flags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.ConfigFile, "config", "c", c.ConfigFile, "Operator configuration file")
	fs.IntVarP(&c.Workers, "workers", "w", c.Workers, "Number of goroutines feeding the operator; records of one stream always go to the same one")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Diagnostic log level written to stderr (debug, info, warn, error)")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Address to serve Prometheus metrics on, disabled when empty")
	fs.BoolVar(&c.EmitMetadata, "emit-metadata", c.EmitMetadata, "Include the @metadata object in written records")
}

// Validate validates the command line options.
func (c *Config) Validate() error {
	if c.ConfigFile == "" {
		return errors.New("--config must name an operator configuration file")
	}
	if c.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", c.Workers)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loadBuilder reads an operator configuration file and decodes it onto the
// defaults of the builder registered for its type.
func loadBuilder(path string) (operator.Builder, error) {
	bytes, err := os.ReadFile(path) // #nosec - configs load based on user specified directory
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return nil, fmt.Errorf("failed to read data from yaml: %w", err)
	}

	operatorType, _ := raw["type"].(string)
	if operatorType == "" {
		return nil, fmt.Errorf("%s: missing required `type` field", path)
	}

	newBuilder, ok := operator.Lookup(operatorType)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported operator type '%s'", path, operatorType)
	}

	builder := newBuilder()
	if err := helper.DecodeConfig(raw, builder); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return builder, nil
}

func buildOperator(path string, set operator.Settings) (*multiline.Transformer, error) {
	builder, err := loadBuilder(path)
	if err != nil {
		return nil, err
	}

	op, err := builder.Build(set)
	if err != nil {
		return nil, err
	}

	transformer, ok := op.(*multiline.Transformer)
	if !ok {
		return nil, fmt.Errorf("operator '%s' of type '%s' cannot merge lines", op.ID(), op.Type())
	}
	return transformer, nil
}
