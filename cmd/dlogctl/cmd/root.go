/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cmd implements dlogctl's cobra command tree.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootCmd is the base command when dlogctl is called without arguments.
var rootCmd = &cobra.Command{
	Use:   "dlogctl",
	Short: "Composition-root exerciser for the dlog pipeline runtime",
	Long: `dlogctl wires the process-wide registries and queue managers,
loads a declarative pipeline specification from a YAML file, and runs
the pipelines it names until a shutdown signal arrives.

It is a thin exerciser of the runtime, not a production daemon: no
concrete input/processor/sink plugins are registered beyond the ones
this module ships, and there is no supervision beyond a single
graceful stop on SIGINT/SIGTERM.`,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("dlogctl: %w", err)
	}
	return nil
}
