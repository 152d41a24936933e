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
	"testing"

	"github.com/cloudwego/syncopt/internal/hbcheck"
	"github.com/cloudwego/syncopt/internal/kernel"
	"github.com/cloudwego/syncopt/internal/opts"
	"github.com/cloudwego/syncopt/platform"
	"github.com/stretchr/testify/require"
)

func FuzzOptimize(f *testing.F) {
	for seed := int64(100); seed < 108; seed++ {
		f.Add(seed, uint8(0))
	}

	/* any generated kernel, on any platform */
	f.Fuzz(func(t *testing.T, seed int64, flags uint8) {
		caps := platform.Caps {
			IndependentSharedFence : flags & 1 != 0,
			TypedFence             : flags & 2 != 0,
			OutputFence            : flags & 4 != 0,
			UnifiedFence           : flags & 8 != 0,
		}

		/* generate the kernel */
		gen := kernel.NewGenerator(seed)
		gen.Calls = flags & 16 != 0
		fn, err := kernel.Lower(gen.Kernel("fuzz"))
		require.NoError(t, err)

		/* optimize it and check the orderings */
		before := hbcheck.Build(fn, caps)
		Optimize(fn, caps, &opts.Options{})
		require.NoError(t, fn.Verify())
		require.Empty(t, hbcheck.Compare(before, hbcheck.Build(fn, caps)), "seed %d flags %#x", seed, flags)
	})
}
