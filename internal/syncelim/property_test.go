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

package syncelim

import (
	"fmt"
	"testing"

	"github.com/cloudwego/syncopt/internal/hbcheck"
	"github.com/cloudwego/syncopt/internal/kernel"
	"github.com/cloudwego/syncopt/internal/opts"
	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
	"github.com/stretchr/testify/require"
)

const (
	_RandomKernels = 200
)

func randomKernels(t *testing.T, seed int64, fn func(name string, d *kernel.Desc)) {
	gen := kernel.NewGenerator(seed)
	gen.Calls = true
	for i := 0; i < _RandomKernels; i++ {
		name := fmt.Sprintf("random_%d_%d", seed, i)
		fn(name, gen.Kernel(name))
	}
}

func lower(t *testing.T, d *kernel.Desc) *ir.Function {
	fn, err := kernel.Lower(d)
	require.NoError(t, err)
	return fn
}

func TestOptimize_Idempotent(t *testing.T) {
	for _, name := range platform.Presets() {
		caps := preset(t, name)
		randomKernels(t, 1, func(kn string, d *kernel.Desc) {
			fn := lower(t, d)
			Optimize(fn, caps, &opts.Options{})
			require.NoError(t, fn.Verify(), kn)
			once := fn.String()

			/* the second run finds nothing left to do */
			sum := Optimize(fn, caps, &opts.Options{})
			require.Equal(t, once, fn.String(), "%s on %s", kn, name)
			require.Zero(t, sum.Removed, kn)
			require.Zero(t, sum.Narrowed, kn)
			require.Zero(t, sum.InvalidationDropped, kn)
		})
	}
}

func TestOptimize_PreservesOrdering(t *testing.T) {
	for _, name := range platform.Presets() {
		caps := preset(t, name)
		randomKernels(t, 2, func(kn string, d *kernel.Desc) {
			fn := lower(t, d)
			before := hbcheck.Build(fn, caps)
			Optimize(fn, caps, &opts.Options{})
			after := hbcheck.Build(fn, caps)
			require.Empty(t, hbcheck.Compare(before, after), "%s on %s:\n%s", kn, name, fn)
		})
	}
}

func TestOptimize_KeepsAllWhenEverythingIsObserved(t *testing.T) {
	b := ir.NewBuilder("observed")
	ops := []*ir.Op{}
	for i := 0; i < 3; i++ {
		b.Store(ir.SpaceShared, "x")
		ops = append(ops, b.Barrier())
		b.Load(ir.SpaceShared, "x")
	}
	b.Return()
	fn := build(t, b)

	sum := Optimize(fn, platform.Caps{}, &opts.Options{})
	require.Equal(t, Summary { Kept: 3 }, sum)
	for _, op := range ops {
		require.True(t, op.Live())
	}
}
