// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Program multiline merges multi-line log records read as JSON lines.
package main // import "github.com/logmerge/multiline/cmd/multiline"

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logmerge/multiline/operator"
)

var runCfg *Config

// rootCmd is the root command on which will be run children commands
var rootCmd = &cobra.Command{
	Use:          "multiline",
	Short:        "Merges consecutive log lines of a stream into single records",
	Example:      "multiline run --config multiline.yaml app.log.gz\nmultiline validate --config multiline.yaml",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run [files...]",
	Short: "Merge records read from files, or stdin when no file is given, and write them to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return Run(ctx, runCfg, args, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the operator configuration builds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := buildOperator(runCfg.ConfigFile, operator.NewNopSettings()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", runCfg.ConfigFile)
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the operator types a configuration may use",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, t := range operator.DefaultRegistry.Types() {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, validateCmd, typesCmd)

	runCfg = NewConfig()
	runCfg.Flags(runCmd.Flags())
	validateCmd.Flags().StringVarP(&runCfg.ConfigFile, "config", "c", runCfg.ConfigFile, "Operator configuration file")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
