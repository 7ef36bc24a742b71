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

// Command dlogctl is a thin composition-root exerciser for the pipeline
// runtime: it wires the process-wide singletons, loads one
// apis/provider.Specification from a YAML file and runs whichever
// pipelines it names until a shutdown signal arrives.
package main

import (
	"os"

	"dirpx.dev/dlog/cmd/dlogctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
