/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"fmt"

	"github.com/cloudwego/syncopt"
	"github.com/cloudwego/syncopt/internal/kernel"
	"github.com/cloudwego/syncopt/ir"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command {
	Use   : "verify [flags] [<kernel>...]",
	Short : "Check that optimizing kernels loses no ordering",
	Long  : `Optimize every kernel given, or randomly generated ones, and check with a reference ordering checker that every pair of memory operations ordered before is still ordered after`,
	RunE  : runVerify,
}

func init() {
	verifyCmd.Flags().Int("random", 0, "number of random kernels to check")
	verifyCmd.Flags().Int64("seed", 1, "seed of the random kernels")
	verifyCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

type _VerifyResult struct {
	name string
	fn   *ir.Function
	src  *kernel.Desc
	lost []syncopt.Violation
}

func runVerify(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	count, err := flags.GetInt("random")
	if err != nil {
		return fmt.Errorf("failed to get random flag: %w", err)
	}

	seed, err := flags.GetInt64("seed")
	if err != nil {
		return fmt.Errorf("failed to get seed flag: %w", err)
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	/* need something to check */
	if len(args) == 0 && count <= 0 {
		return fmt.Errorf("no kernel given, use --random to check generated ones")
	}

	/* platform capabilities */
	caps, err := loadCaps(cmd)
	if err != nil {
		return err
	}

	/* the kernel files */
	res := make([]_VerifyResult, 0, len(args) + count)
	for _, path := range args {
		d, err := kernel.LoadFile(path)
		if err != nil {
			return err
		}
		res = append(res, _VerifyResult { name: path, src: d })
	}

	/* the generated kernels, generated up front so the seed alone decides them */
	gen := kernel.NewGenerator(seed)
	gen.Calls = true
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("random_%d", i)
		res = append(res, _VerifyResult { name: name, src: gen.Kernel(name) })
	}

	/* check every kernel */
	err = parallel(cmd.Context(), len(res), jobs, func(_ context.Context, i int) error {
		var err error
		vr := &res[i]

		/* lower into IR */
		if vr.fn, err = kernel.Lower(vr.src); err != nil {
			return fmt.Errorf("%s: %w", vr.name, err)
		}

		/* optimizer options */
		opts, err := loadOptions(cmd, nil)
		if err != nil {
			return err
		}

		/* optimize and compare */
		_, vr.lost = syncopt.Verify(vr.fn, caps, opts...)
		return nil
	})

	/* check for errors */
	if err != nil {
		return err
	}

	/* report every failure */
	nb := 0
	out := cmd.OutOrStdout()
	for i := range res {
		vr := &res[i]
		if len(vr.lost) == 0 {
			continue
		}

		/* the lost pairs */
		nb++
		fmt.Fprintf(out, "%s: %s\n", nameColor.Sprint(vr.name), errColor.Sprintf("%d pairs lost their ordering", len(vr.lost)))
		for _, v := range vr.lost {
			fmt.Fprintf(out, "    %s\n", v)
		}

		/* the source kernel, so it can be reproduced */
		if err = kernel.Encode(out, vr.src, kernel.FormatTOML); err != nil {
			return err
		}
	}

	/* the final verdict */
	if nb != 0 {
		return fmt.Errorf("%d of %d kernels lost ordering", nb, len(res))
	} else {
		fmt.Fprintf(out, "%s %d kernels\n", okColor.Sprint("ok"), len(res))
		return nil
	}
}
