// Copyright 2021 Matrix Origin
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

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matrixorigin/oamap/pkg/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:          "mo-oamap",
		Short:        "Open addressing int32 -> int64 hash map tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "toml configuration file")
	root.AddCommand(benchCommand(&configFile), inspectCommand())
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.NewDefault(), nil
	}
	return config.LoadFromFile(path)
}
