// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package operatortest // import "github.com/logmerge/multiline/operator/helper/operatortest"

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/logmerge/multiline/operator"
	"github.com/logmerge/multiline/operator/helper"
)

// ConfigUnmarshalTests is used for testing golden configs
type ConfigUnmarshalTests struct {
	DefaultConfig func() operator.Builder
	TestsFile     string
	Tests         []ConfigUnmarshalTest
}

// ConfigUnmarshalTest is used for testing golden configs
type ConfigUnmarshalTest struct {
	Name      string
	Expect    any
	ExpectErr bool
}

// Run Unmarshals yaml files and compares them against the expected.
func (c ConfigUnmarshalTests) Run(t *testing.T) {
	raw, err := loadTestsFile(c.TestsFile)
	require.NoError(t, err)

	for _, tc := range c.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			section, ok := raw[tc.Name]
			require.True(t, ok, "missing section %q in %s", tc.Name, c.TestsFile)

			cfg := c.DefaultConfig()
			err := helper.DecodeConfig(section, cfg)

			if tc.ExpectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.Expect, cfg)
		})
	}
}

func loadTestsFile(file string) (map[string]map[string]any, error) {
	bytes, err := os.ReadFile(file) // #nosec - configs load based on user specified directory
	if err != nil {
		return nil, fmt.Errorf("could not find config file: %w", err)
	}

	raw := map[string]map[string]any{}
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return nil, fmt.Errorf("failed to read data from yaml: %w", err)
	}
	return raw, nil
}
