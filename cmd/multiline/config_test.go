// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/logmerge/multiline/operator"
	"github.com/logmerge/multiline/operator/transformer/multiline"
)

func TestConfigFlags(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	cfg.Flags(fs)

	require.NoError(t, fs.Parse([]string{
		"-c", "merge.yaml",
		"--workers", "4",
		"--log-level", "debug",
		"--metrics-addr", "127.0.0.1:9464",
		"--emit-metadata",
	}))
	require.Equal(t, &Config{
		ConfigFile:   "merge.yaml",
		Workers:      4,
		LogLevel:     "debug",
		MetricsAddr:  "127.0.0.1:9464",
		EmitMetadata: true,
	}, cfg)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"Default", func(*Config) {}, ""},
		{"NoConfigFile", func(c *Config) { c.ConfigFile = "" }, "--config"},
		{"NoWorkers", func(c *Config) { c.Workers = 0 }, "--workers must be at least 1, got 0"},
		{"BadLogLevel", func(c *Config) { c.LogLevel = "loud" }, "--log-level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("warn")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(-1))

	_, err = newLogger("chatty")
	require.Error(t, err)
}

func TestLoadBuilder(t *testing.T) {
	builder, err := loadBuilder("testdata/java.yaml")
	require.NoError(t, err)

	cfg, ok := builder.(*multiline.Config)
	require.True(t, ok)
	require.Equal(t, "java-traces", cfg.ID())
	require.Equal(t, `^\s`, cfg.Pattern)
	require.Equal(t, multiline.WhatPrevious, cfg.What)
	require.Len(t, cfg.StreamIdentity, 1)
	require.Equal(t, []string{"multiline"}, cfg.AddTag)
	require.Equal(t, 500, cfg.MaxLines)
}

func TestLoadBuilderErrors(t *testing.T) {
	cases := []struct {
		file   string
		errMsg string
	}{
		{"testdata/nope.yaml", "could not read config file"},
		{"testdata/malformed.yaml", "failed to read data from yaml"},
		{"testdata/missing_type.yaml", "missing required `type` field"},
		{"testdata/unknown_type.yaml", "unsupported operator type 'grok'"},
		{"testdata/unknown_field.yaml", "patern"},
	}

	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			_, err := loadBuilder(tc.file)
			require.ErrorContains(t, err, tc.errMsg)
		})
	}
}

func TestBuildOperator(t *testing.T) {
	op, err := buildOperator("testdata/java.yaml", operator.NewNopSettings())
	require.NoError(t, err)
	require.Equal(t, "java-traces", op.ID())

	_, err = buildOperator("testdata/invalid.yaml", operator.NewNopSettings())
	require.ErrorContains(t, err, "pattern")
}
