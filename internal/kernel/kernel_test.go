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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/syncopt/ir"
	"github.com/stretchr/testify/require"
)

const _LoopKernel = `
name = "loop"

[[resource]]
name = "buf"
kind = "global"

[[block]]
name = "entry"
succ = ["body"]
ops = ["store shared @addr", "barrier"]

[[block]]
name = "body"
succ = ["body", "exit"]
ops = ["load shared @addr", "ldraw res=buf", "fence global invalidate"]

[[block]]
name = "exit"
ops = ["atomiccounterinc res=buf"]
`

func loadLoop(t *testing.T) *Desc {
	d, err := Decode(strings.NewReader(_LoopKernel), FormatTOML)
	require.NoError(t, err)
	return d
}

func TestLower(t *testing.T) {
	fn, err := Lower(loadLoop(t))
	require.NoError(t, err)
	require.Len(t, fn.Blocks, 3)
	require.Equal(t, ir.OpBranch, fn.Blocks[0].Term().Kind)
	require.Equal(t, ir.OpReturn, fn.Blocks[2].Term().Kind)
	require.Equal(t, []*ir.BasicBlock { fn.Blocks[1], fn.Blocks[2] }, fn.Blocks[1].Succ)
	require.Equal(t, []*ir.BasicBlock { fn.Blocks[0], fn.Blocks[1] }, fn.Blocks[1].Pred)
	require.Equal(t, ir.ResourceGlobal, fn.LookupResource(fn.Blocks[1].Ops[1].Res))
	require.True(t, fn.Blocks[1].Ops[2].Fence.Global)
	require.True(t, fn.Blocks[1].Ops[2].Fence.Invalidate)
}

func TestLower_Errors(t *testing.T) {
	tab := []struct {
		desc Desc
		err  string
	} {
		{ Desc { Name: "empty" }, "kernel empty: no blocks" },
		{
			Desc { Name: "k", Blocks: []BlockDesc { { Name: "a", Succ: []string { "b" } } } },
			"kernel k: block a: unknown successor b",
		},
		{
			Desc { Name: "k", Blocks: []BlockDesc { { Name: "a", Ops: []string { "ldraw res=nope" } } } },
			"kernel k: block a: op 0: Syntax error at position 0: unknown resource nope",
		},
		{
			Desc { Name: "k", Blocks: []BlockDesc { { Name: "a", Ops: []string { "ret" } } } },
			"kernel k: block a: op 0: Syntax error at position 0: explicit terminator",
		},
		{
			Desc { Name: "k", Blocks: []BlockDesc { { Name: "a" }, { Name: "a" } } },
			"kernel k: duplicated block a",
		},
		{
			Desc { Name: "k", Resources: []ResourceDesc { { Name: "x", Kind: "vram" } }, Blocks: []BlockDesc { { Name: "a" } } },
			`kernel k: resource x: unknown kind "vram"`,
		},
	}
	for _, v := range tab {
		_, err := Lower(&v.desc)
		require.EqualError(t, err, v.err)
	}
}

func TestDescribe_RoundTrip(t *testing.T) {
	fn, err := Lower(loadLoop(t))
	require.NoError(t, err)
	d := Describe(fn)
	require.Equal(t, loadLoop(t).Blocks, d.Blocks)

	/* lowering it again gives the same kernel */
	fn2, err := Lower(d)
	require.NoError(t, err)
	require.Equal(t, fn.String(), fn2.String())
}

func TestFormats(t *testing.T) {
	src := loadLoop(t)
	for _, f := range []Format { FormatTOML, FormatMsgpack, FormatThrift } {
		buf := bytes.NewBuffer(nil)
		require.NoError(t, Encode(buf, src, f), f.String())
		d, err := Decode(buf, f)
		require.NoError(t, err, f.String())
		require.Equal(t, src, d, f.String())
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	src := loadLoop(t)
	for _, name := range []string { "k.toml", "k.msgpack", "k.tbin" } {
		fp := filepath.Join(dir, name)
		require.NoError(t, SaveFile(fp, src))
		d, err := LoadFile(fp)
		require.NoError(t, err)
		require.Equal(t, src, d)
	}
	require.Error(t, SaveFile(filepath.Join(dir, "k.json"), src))
}

func TestUnmarshalThrift_Errors(t *testing.T) {
	_, err := UnmarshalThrift([]byte { 0x0f })
	require.Error(t, err)
	buf, err := MarshalThrift(loadLoop(t))
	require.NoError(t, err)
	_, err = UnmarshalThrift(buf[:len(buf) - 3])
	require.Error(t, err)
	_, err = MarshalThrift(&Desc { Resources: []ResourceDesc { { Name: "x", Kind: "vram" } } })
	require.Error(t, err)
}

func TestGenerator(t *testing.T) {
	gen := NewGenerator(42)
	for i := 0; i < 100; i++ {
		d := gen.Kernel("random")
		fn, err := Lower(d)
		require.NoError(t, err)
		require.NoError(t, fn.Verify())
	}

	/* same seed, same kernels */
	a := NewGenerator(7).Kernel("k")
	b := NewGenerator(7).Kernel("k")
	require.Equal(t, a, b)
}
