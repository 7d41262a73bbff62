// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package multiline // import "github.com/logmerge/multiline/operator/transformer/multiline"

import (
	"fmt"
	"sort"
	"time"

	"github.com/logmerge/multiline/entry"
	mlerrors "github.com/logmerge/multiline/errors"
	"github.com/logmerge/multiline/operator"
	"github.com/logmerge/multiline/operator/helper"
)

const (
	operatorType = "multiline"

	// WhatPrevious means a matching line continues the block started before it.
	WhatPrevious = "previous"
	// WhatNext means a matching line announces that the following line continues its block.
	WhatNext = "next"

	defaultSeparator     = "\n"
	defaultMaxLines      = 500
	defaultMaxAge        = 5 * time.Second
	defaultFlushInterval = time.Second
)

func init() {
	operator.Register(operatorType, func() operator.Builder { return NewConfig() })
}

// NewConfig creates a new multiline config with default values
func NewConfig() *Config {
	return NewConfigWithID(operatorType)
}

// NewConfigWithID creates a new multiline config with default values
func NewConfigWithID(operatorID string) *Config {
	return &Config{
		TransformerConfig: helper.NewTransformerConfig(operatorID, operatorType),
		Source:            entry.NewField(entry.DefaultSourceKey),
		AllowDuplicates:   true,
		MaxLines:          defaultMaxLines,
		MaxAge:            defaultMaxAge,
		FlushInterval:     defaultFlushInterval,
		PeriodicFlush:     true,
		Separator:         defaultSeparator,
	}
}

// Config is the configuration of a multiline operator
type Config struct {
	helper.TransformerConfig `mapstructure:",squash"`

	Pattern         string            `mapstructure:"pattern"`
	Negate          bool              `mapstructure:"negate"`
	What            string            `mapstructure:"what"`
	Source          entry.Field       `mapstructure:"source"`
	StreamIdentity  []entry.Field     `mapstructure:"stream_identity"`
	AllowDuplicates bool              `mapstructure:"allow_duplicates"`
	MaxLines        int               `mapstructure:"max_lines"`
	MaxAge          time.Duration     `mapstructure:"max_age"`
	FlushInterval   time.Duration     `mapstructure:"flush_interval"`
	PeriodicFlush   bool              `mapstructure:"periodic_flush"`
	Separator       string            `mapstructure:"separator"`
	MergeFields     bool              `mapstructure:"merge_fields"`
	MaxStreams      int               `mapstructure:"max_streams"`
	AddTag          []string          `mapstructure:"add_tag"`
	RemoveTag       []string          `mapstructure:"remove_tag"`
	AddField        map[string]string `mapstructure:"add_field"`
}

func (c *Config) invalid(description, suggestion, key, value string) error {
	return mlerrors.NewError(description, suggestion, "operator_id", c.ID(), key, value)
}

// Build creates a new Transformer from a config
func (c *Config) Build(set operator.Settings) (operator.Operator, error) {
	return c.build(set)
}

func (c *Config) build(set operator.Settings) (*Transformer, error) {
	transformer, err := c.TransformerConfig.Build(set)
	if err != nil {
		return nil, fmt.Errorf("failed to build transformer config: %w", err)
	}

	if c.Pattern == "" {
		return nil, c.invalid("missing required `pattern` field.",
			"set `pattern` to the regular expression that identifies continuation lines.", "pattern", "")
	}
	re, err := helper.CompileRegexp(c.Pattern)
	if err != nil {
		return nil, mlerrors.WithDetails(
			c.invalid("invalid `pattern` field.", "ensure `pattern` is a valid regular expression.", "pattern", c.Pattern),
			"error", err.Error(),
		)
	}

	var mode what
	switch c.What {
	case WhatPrevious:
		mode = whatPrevious
	case WhatNext:
		mode = whatNext
	default:
		return nil, c.invalid("invalid `what` field.",
			"set `what` to either `previous` or `next`.", "what", c.What)
	}

	if c.Source.IsEmpty() {
		return nil, c.invalid("missing required `source` field.",
			"set `source` to the field holding the raw line, such as `message`.", "source", "")
	}

	if c.MaxLines < 2 {
		return nil, c.invalid("invalid `max_lines` field.",
			"`max_lines` must be greater than 1.", "max_lines", fmt.Sprint(c.MaxLines))
	}

	if c.MaxAge <= 0 {
		return nil, c.invalid("invalid `max_age` field.",
			"`max_age` must be a positive duration.", "max_age", c.MaxAge.String())
	}

	if c.PeriodicFlush && c.FlushInterval <= 0 {
		return nil, c.invalid("invalid `flush_interval` field.",
			"`flush_interval` must be a positive duration when `periodic_flush` is enabled.",
			"flush_interval", c.FlushInterval.String())
	}

	if c.MaxStreams < 0 {
		return nil, c.invalid("invalid `max_streams` field.",
			"`max_streams` must be zero (unlimited) or positive.", "max_streams", fmt.Sprint(c.MaxStreams))
	}

	deco, err := c.buildDecorator()
	if err != nil {
		return nil, err
	}

	table := newBufferTable()
	tel, err := newTelemetry(set.Registerer, transformer.ID(), func() float64 { return float64(table.len()) })
	if err != nil {
		return nil, fmt.Errorf("failed to register telemetry: %w", err)
	}

	t := &Transformer{
		TransformerOperator: transformer,
		matcher: &matcher{
			re:     re,
			negate: c.Negate,
			source: c.Source,
		},
		keyer: streamKeyer{fields: c.StreamIdentity},
		merger: &merger{
			what:        mode,
			maxLines:    c.MaxLines,
			dedup:       duplicateFilter{allowDuplicates: c.AllowDuplicates},
			separator:   c.Separator,
			source:      c.Source,
			mergeFields: c.MergeFields,
			decorate:    deco,
		},
		table:      table,
		maxAge:     c.MaxAge,
		maxStreams: c.MaxStreams,
		telemetry:  tel,
	}

	if c.PeriodicFlush {
		t.scheduler = newFlushScheduler(transformer.Clock, c.FlushInterval, t.flushExpired)
	}

	return t, nil
}

func (c *Config) buildDecorator() (*decorator, error) {
	if len(c.AddTag) == 0 && len(c.RemoveTag) == 0 && len(c.AddField) == 0 {
		return nil, nil
	}

	d := &decorator{
		addTags:    c.AddTag,
		removeTags: c.RemoveTag,
	}

	names := make([]string, 0, len(c.AddField))
	for name := range c.AddField {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, err := entry.ParseField(name)
		if err != nil {
			return nil, mlerrors.WithDetails(
				c.invalid("invalid `add_field` key.", "use dotted or bracketed field notation.", "add_field", name),
				"error", err.Error(),
			)
		}
		d.addFields = append(d.addFields, fieldValue{field: field, value: c.AddField[name]})
	}
	return d, nil
}
