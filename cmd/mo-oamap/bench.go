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
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/matrixorigin/oamap/pkg/bench"
	"github.com/matrixorigin/oamap/pkg/logutil"
)

func benchCommand(configFile *string) *cobra.Command {
	var (
		attempts    int
		seed        uint64
		trials      int
		parallelism int
		stores      []string
		detail      bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare put/get time of the open addressing map and the builtin map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("attempts") {
				cfg.Bench.Attempts = attempts
			}
			if flags.Changed("seed") {
				cfg.Bench.Seed = seed
			}
			if flags.Changed("trials") {
				cfg.Bench.Trials = trials
			}
			if flags.Changed("parallelism") {
				cfg.Bench.Parallelism = parallelism
			}
			if flags.Changed("stores") {
				cfg.Bench.Stores = stores
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logutil.SetupMOLogger(&cfg.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := bench.NewRunner(cfg).Run(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, report.String())
			if detail {
				fmt.Fprint(out, report.Detail())
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&attempts, "attempts", 0, "puts per trial, followed by as many gets")
	flags.Uint64Var(&seed, "seed", 0, "seed of the key/value generator")
	flags.IntVar(&trials, "trials", 0, "independent trials per store")
	flags.IntVar(&parallelism, "parallelism", 0, "goroutines running trials")
	flags.StringSliceVar(&stores, "stores", nil, "stores to drive: open-addressing, builtin")
	flags.BoolVar(&detail, "detail", false, "print sizes, throughput and table stats")
	return cmd
}
