// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command trustd runs trustify's ingestion server: the importer control
// loop that schedules document fetches, and the one-shot "import" command
// used to ingest a single local document outside of any schedule.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "trustd: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trustd",
	Short: "trustify's ingestion server",
	Long: `trustd ingests SBOMs and vulnerability advisories into trustify's
graph, either on demand via "trustd import" or continuously via
"trustd server" driven by scheduled importers.`,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importerCmd)
}
