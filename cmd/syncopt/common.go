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
	"runtime"

	"github.com/cloudwego/syncopt"
	"github.com/cloudwego/syncopt/category"
	"github.com/cloudwego/syncopt/explain"
	"github.com/cloudwego/syncopt/internal/kernel"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed, color.Bold)
	nameColor = color.New(color.Bold)
	keptColor = color.New(color.Reset)
)

// loadCaps resolves the platform capabilities from the global flags.
func loadCaps(cmd *cobra.Command) (platform.Caps, error) {
	flags := cmd.Root().PersistentFlags()
	file, err := flags.GetString("caps")
	if err != nil {
		return platform.Caps{}, err
	}

	/* a capabilities file wins over the preset */
	if file != "" {
		return platform.LoadFile(file)
	}

	/* otherwise use the preset */
	name, err := flags.GetString("preset")
	if err != nil {
		return platform.Caps{}, err
	} else {
		return platform.Preset(name)
	}
}

// loadOptions builds the optimizer options from the global flags.
func loadOptions(cmd *cobra.Command, ex explain.Explainer) ([]syncopt.Option, error) {
	names, err := cmd.Root().PersistentFlags().GetStringSlice("disable-case")
	if err != nil {
		return nil, err
	}

	/* parse the disabled cases */
	cases, err := category.ParseCases(names)
	if err != nil {
		return nil, err
	}

	/* build the options */
	ret := []syncopt.Option { syncopt.WithDisabledCases(uint16(cases)) }
	if ex != nil {
		ret = append(ret, syncopt.WithExplainer(ex))
	}
	return ret, nil
}

// loadKernel reads a kernel file and lowers it.
func loadKernel(path string) (*ir.Function, error) {
	d, err := kernel.LoadFile(path)
	if err != nil {
		return nil, err
	}

	/* lower into IR */
	fn, err := kernel.Lower(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	} else {
		return fn, nil
	}
}

// parallel calls fn for every index in [0, n) with at most jobs calls in
// flight, and returns the first error.
func parallel(ctx context.Context, n int, jobs int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}

	/* default to the number of CPUs */
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	/* run every job */
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, n))

	/* results are stored by index, no locking needed */
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			} else {
				return fn(gctx, i)
			}
		})
	}
	return g.Wait()
}

func verdictColor(v explain.Verdict) *color.Color {
	switch {
		case v & explain.Redundant != 0 : return okColor
		case v &^ explain.Required != 0 : return warnColor
		default                         : return keptColor
	}
}

func printSummary(cmd *cobra.Command, name string, sum syncopt.Summary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: kept %d, ", nameColor.Sprint(name), sum.Kept)
	fmt.Fprintf(w, "removed %s, ", okColor.Sprint(sum.Removed))
	fmt.Fprintf(w, "narrowed %s, ", okColor.Sprint(sum.Narrowed))
	fmt.Fprintf(w, "invalidations dropped %s\n", okColor.Sprint(sum.InvalidationDropped))
}
