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
	"path/filepath"

	"github.com/cloudwego/syncopt"
	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/internal/kernel"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command {
	Use   : "run [flags] <kernel>...",
	Short : "Optimize kernel files",
	Long  : `Optimize every kernel file given, print what happened to its synchronization instructions, and optionally write the rewritten kernels`,
	Args  : cobra.MinimumNArgs(1),
	RunE  : runOptimize,
}

func init() {
	runCmd.Flags().Bool("explain", false, "print the reason of every decision")
	runCmd.Flags().Bool("dump", false, "dump the raw decision records")
	runCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	runCmd.Flags().StringP("output", "o", "", "directory to write the optimized kernels to")
	runCmd.Flags().String("format", "", "format of the written kernels (toml|msgpack|thrift), defaults to the input format")
}

type _RunResult struct {
	sum   syncopt.Summary
	rec   *explain.Recorder
	out   *kernel.Desc
}

func runOptimize(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	why, err := flags.GetBool("explain")
	if err != nil {
		return fmt.Errorf("failed to get explain flag: %w", err)
	}

	dump, err := flags.GetBool("dump")
	if err != nil {
		return fmt.Errorf("failed to get dump flag: %w", err)
	}

	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	outdir, err := flags.GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	/* platform capabilities */
	caps, err := loadCaps(cmd)
	if err != nil {
		return err
	}

	/* optimize every kernel */
	res := make([]_RunResult, len(args))
	err = parallel(cmd.Context(), len(args), jobs, func(_ context.Context, i int) error {
		fn, err := loadKernel(args[i])
		if err != nil {
			return err
		}

		/* record the decisions if asked */
		rr := &res[i]
		if why || dump {
			rr.rec = new(explain.Recorder)
		}

		/* optimizer options */
		opts, err := loadOptions(cmd, explainerOf(rr.rec))
		if err != nil {
			return err
		}

		/* run the optimizer */
		rr.sum = syncopt.Optimize(fn, caps, opts...)
		rr.out = kernel.Describe(fn)
		return nil
	})

	/* check for errors */
	if err != nil {
		return err
	}

	/* report in the order of the arguments */
	for i, path := range args {
		rr := &res[i]
		printSummary(cmd, path, rr.sum)

		/* the decisions */
		if why {
			for _, e := range rr.rec.Entries {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", verdictColor(e.Verdict).Sprint(e.String()))
			}
		}

		/* the raw records */
		if dump {
			rr.rec.Dump(cmd.OutOrStdout())
		}

		/* write the optimized kernel */
		if outdir != "" {
			if err = writeKernel(outdir, path, format, rr.out); err != nil {
				return err
			}
		}
	}
	return nil
}

func explainerOf(rec *explain.Recorder) explain.Explainer {
	if rec == nil {
		return nil
	} else {
		return rec
	}
}

func writeKernel(dir string, src string, format string, d *kernel.Desc) error {
	name := filepath.Base(src)

	/* change the extension if another format is requested */
	if format != "" {
		f, err := kernel.ParseFormat(format)
		if err != nil {
			return err
		}
		name = name[:len(name) - len(filepath.Ext(name))] + "." + f.String()
	}

	/* write the file */
	return kernel.SaveFile(filepath.Join(dir, name), d)
}
