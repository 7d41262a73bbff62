// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package helper // import "github.com/logmerge/multiline/operator/helper"

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeHook converts duration strings and every type implementing
// encoding.TextUnmarshaler, such as entry.Field.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// DecodeConfig decodes a raw configuration map onto config, which should
// already hold its default values. Unknown keys are rejected and scalar
// values are lifted into lists where a list is expected.
func DecodeConfig(raw map[string]any, config any) error {
	dc := &mapstructure.DecoderConfig{
		Result:           config,
		DecodeHook:       DecodeHook(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	}
	ms, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return err
	}
	if err := ms.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
