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

package kernel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func FuzzUnmarshalThrift(f *testing.F) {
	gen := NewGenerator(11)
	for i := 0; i < 4; i++ {
		buf, err := MarshalThrift(gen.Kernel("seed"))
		require.NoError(f, err)
		f.Add(buf)
	}

	/* whatever decodes must encode back to the same kernel */
	f.Fuzz(func(t *testing.T, data []byte) {
		d, err := UnmarshalThrift(data)
		if err != nil {
			return
		}
		buf, err := MarshalThrift(d)
		require.NoError(t, err)
		d2, err := UnmarshalThrift(buf)
		require.NoError(t, err)
		require.Equal(t, d, d2)
	})
}

func FuzzLower(f *testing.F) {
	f.Add(_LoopKernel)
	f.Add("name = \"k\"\n[[block]]\nname = \"a\"\nops = [\"fence.lsc target=slm scope=group op=evict\", \"alu\"]\n")

	/* a kernel that lowers must survive a trip through its description */
	f.Fuzz(func(t *testing.T, src string) {
		d, err := Decode(strings.NewReader(src), FormatTOML)
		if err != nil {
			return
		}
		fn, err := Lower(d)
		if err != nil {
			return
		}
		require.NoError(t, fn.Verify())
		fn2, err := Lower(Describe(fn))
		require.NoError(t, err)
		require.Equal(t, fn.String(), fn2.String())
	})
}
