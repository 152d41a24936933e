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

package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFunction_EraseRenumbersBlock(t *testing.T) {
	b := NewBuilder("erase")
	b.Block("entry")
	st := b.Store(SpaceGlobal, "x")
	fe := b.Fence(true, false)
	ld := b.Load(SpaceGlobal, "x")
	b.Jump("exit")
	b.Block("exit")
	rt := b.Return()
	fn, err := b.Build()
	require.NoError(t, err)

	fn.Erase(fe)
	require.False(t, fe.Live())
	require.Equal(t, -1, fe.Pos())
	require.Equal(t, 0, st.Pos())
	require.Equal(t, 1, ld.Pos())
	require.Equal(t, 0, rt.Pos())
	require.Same(t, fe, fn.Op(fe.Id))
	require.NoError(t, fn.Verify())
	require.Len(t, fn.Live(), 4)
}

func TestFunction_EraseInvariants(t *testing.T) {
	b := NewBuilder("invariants")
	fe := b.Fence(false, false)
	rt := b.Return()
	fn, err := b.Build()
	require.NoError(t, err)

	require.PanicsWithValue(t, EInvariant(rt, "erasing a terminator"), func() { fn.Erase(rt) })
	fn.Erase(fe)
	require.Panics(t, func() { fn.Erase(fe) })
}

func TestFunction_Verify(t *testing.T) {
	fn := NewFunction("broken")
	bb := fn.CreateBlock("entry")
	fn.Append(bb, Op { Kind: OpALU })
	require.EqualError(t, fn.Verify(), "bb_0: missing terminator")

	b := NewBuilder("dangling")
	b.Block("entry")
	b.Jump("next")
	b.Block("next")
	b.Return()
	fn, err := b.Build()
	require.NoError(t, err)
	fn.Blocks[1].Pred = append(fn.Blocks[1].Pred, fn.Blocks[1])
	require.Error(t, fn.Verify())
}

func TestParseOp_RoundTrip(t *testing.T) {
	b := NewBuilder("roundtrip")
	res := b.Resource("buf", ResourceGlobal)
	ops := []*Op {
		b.Store(SpaceShared, "addr"),
		b.Load(SpaceGeneric, ""),
		b.Atomic(SpaceGlobal, "cnt"),
		b.Access(OpBufferLoad, res),
		b.Access(OpAtomicCounter, res),
		b.Fence(true, true),
		b.Fence(false, false),
		b.TypedFence(true),
		b.SharedFence(),
		b.OutputFence(),
		b.UnifiedFence(TargetTGM, ScopeTile, FenceEvict),
		b.Barrier(),
		b.Return(),
	}
	fn, err := b.Build()
	require.NoError(t, err)

	for _, op := range ops {
		spec, err := ParseOp(op.String())
		require.NoError(t, err, op.String())
		require.Equal(t, op.Kind, spec.Kind, op.String())
		require.Equal(t, op.Addr, spec.Addr, op.String())
		require.Equal(t, fn.ResourceName(op.Res), spec.Res, op.String())
		require.Equal(t, op.Fence.Global, spec.Fence.Global, op.String())
		require.Equal(t, op.Fence.Invalidate, spec.Fence.Invalidate, op.String())
		if op.Kind == OpUnifiedFence {
			require.Equal(t, op.Fence, spec.Fence)
		}
		if op.Kind == OpLoad || op.Kind == OpStore || op.Kind == OpAtomic {
			require.Equal(t, op.Space, spec.Space)
		}
	}
}

func TestParseOp_Errors(t *testing.T) {
	_, err := ParseOp("")
	require.Error(t, err)
	_, err = ParseOp("frobnicate global")
	require.EqualError(t, err, "Syntax error at position 0: unknown mnemonic frobnicate")
	_, err = ParseOp("fence.lsc target=vram")
	require.Error(t, err)
	_, err = ParseOp("fence global sticky")
	require.EqualError(t, err, "Syntax error at position 13: unknown flag sticky")
}

func TestOp_HasInvalidation(t *testing.T) {
	b := NewBuilder("inv")
	require.True(t, b.Fence(true, true).HasInvalidation())
	require.False(t, b.Fence(true, false).HasInvalidation())
	require.True(t, b.TypedFence(true).HasInvalidation())
	require.True(t, b.UnifiedFence(TargetUGM, ScopeGPU, FenceInvalidate).HasInvalidation())
	require.False(t, b.UnifiedFence(TargetUGM, ScopeGPU, FenceEvict).HasInvalidation())
	require.False(t, b.Barrier().HasInvalidation())
}
