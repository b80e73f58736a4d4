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
	"math"

	"github.com/spf13/cobra"

	"github.com/matrixorigin/oamap/pkg/common/moerr"
	"github.com/matrixorigin/oamap/pkg/container/hashtable"
)

func inspectCommand() *cobra.Command {
	var (
		length int
		keys   []int
		maxN   int
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print hash indices of sample keys and rounded table sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if length < 1 {
				return moerr.NewInvalidArg(cmd.Context(), "length", length)
			}
			if maxN < 0 || maxN > hashtable.MaximumCapacity {
				return moerr.NewInvalidArg(cmd.Context(), "max", maxN)
			}
			for _, k := range keys {
				if k < math.MinInt32 || k > math.MaxInt32 {
					return moerr.NewInvalidArg(cmd.Context(), "keys", k)
				}
			}
			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%d: %d\n", k, hashtable.HashIndex(int32(k), length))
			}
			fmt.Fprintln(out, "-------------------------")
			for n := 1; n <= maxN; n++ {
				fmt.Fprintf(out, "%d: %d\n", n, hashtable.RoundUpToPowerOfTwo(n))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&length, "length", 3, "table length the keys are reduced into")
	flags.IntSliceVar(&keys, "keys", []int{3, 2, 1, 0, -1, -2, -3, -4, -5}, "sample keys")
	flags.IntVar(&maxN, "max", 10, "print the rounded table size of 1..max")
	return cmd
}
