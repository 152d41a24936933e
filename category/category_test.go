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

package category

import (
	"testing"

	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
	"github.com/stretchr/testify/require"
)

func allCaps() []platform.Caps {
	var ret []platform.Caps
	for i := 0; i < 16; i++ {
		ret = append(ret, platform.Caps {
			IndependentSharedFence : i & 1 != 0,
			TypedFence             : i & 2 != 0,
			OutputFence            : i & 4 != 0,
			UnifiedFence           : i & 8 != 0,
		})
	}
	return ret
}

func syncOps(b *ir.Builder) []*ir.Op {
	ret := []*ir.Op {
		b.Barrier(),
		b.Fence(false, false),
		b.Fence(true, false),
		b.Fence(true, true),
		b.SharedFence(),
		b.TypedFence(false),
		b.TypedFence(true),
		b.OutputFence(),
	}
	for _, tg := range []ir.MemoryTarget { ir.TargetUGM, ir.TargetUGML, ir.TargetTGM, ir.TargetSLM, ir.TargetURB } {
		for _, fo := range []ir.FenceOp { ir.FenceNone, ir.FenceInvalidate, ir.FenceEvict } {
			ret = append(ret, b.UnifiedFence(tg, ir.ScopeGPU, fo))
		}
	}
	return ret
}

func TestCaseMask(t *testing.T) {
	require.Equal(t, WriteSyncRead, CaseMask(SharedRead, SharedWrite, ResShared))
	require.Equal(t, Case(0), CaseMask(SharedRead, SharedRead, ResShared))
	require.Equal(t, Case(0), CaseMask(EndOfThread, SharedWrite, ResShared))
	require.Equal(t, WriteSyncRet, CaseMask(EndOfThread, BufferWrite, ResBuffer))
	require.Equal(t, AtomicSyncRead, CaseMask(BufferRead, Atomic, ResBuffer))
	require.Equal(t, AtomicSyncAtomic, CaseMask(Atomic, Atomic, ResTyped))
	require.Equal(t, ReadSyncWrite | WriteSyncWrite | WriteSyncRead, CaseMask(Buffer, Buffer, ResBuffer))
	require.Equal(t, Case(0), CaseMask(Buffer, Buffer, ResTyped))
	require.Equal(t, AllCases, CaseMaskFor(All, All))
	require.Equal(t, WriteSyncRead, CaseMaskFor(BufferRead, BufferWrite, ResShared, ResBuffer))
}

func TestCase_String(t *testing.T) {
	require.Equal(t, "none", Case(0).String())
	require.Equal(t, "read_sync_write|write_sync_ret", (ReadSyncWrite | WriteSyncRet).String())
	cs, err := ParseCases([]string { "write_sync_ret", " read_sync_write" })
	require.NoError(t, err)
	require.Equal(t, ReadSyncWrite | WriteSyncRet, cs)
	_, err = ParseCases([]string { "sync_sync" })
	require.Error(t, err)
	require.Equal(t, "buffer_read|shared_write", (BufferRead | SharedWrite).String())
}

func TestClassifier_Category(t *testing.T) {
	b := ir.NewBuilder("category")
	gbuf := b.Resource("g", ir.ResourceGlobal)
	sbuf := b.Resource("s", ir.ResourceShared)
	rbuf := b.Resource("r", ir.ResourceReadOnly)
	cl := NewClassifier(platform.Caps{})
	fn := b.Func()

	tab := []struct {
		op  *ir.Op
		cat Mask
	} {
		{ b.Load(ir.SpaceGlobal, ""), BufferRead },
		{ b.Store(ir.SpaceShared, ""), SharedWrite },
		{ b.Load(ir.SpacePrivate, ""), None },
		{ b.Load(ir.SpaceConstant, ""), None },
		{ b.Store(ir.SpaceConstant, ""), BufferWrite },
		{ b.Emit(ir.Op { Kind: ir.OpLoad, Space: ir.SpaceGeneric, Res: sbuf }), SharedRead },
		{ b.Access(ir.OpBufferLoad, gbuf), BufferRead },
		{ b.Access(ir.OpBufferLoad, rbuf), None },
		{ b.Access(ir.OpBufferStore, rbuf), BufferWrite },
		{ b.Access(ir.OpTypedRead, gbuf), TypedRead },
		{ b.Access(ir.OpSample, rbuf), None },
		{ b.Access(ir.OpTypedWrite, gbuf), TypedWrite },
		{ b.Atomic(ir.SpaceShared, ""), Atomic },
		{ b.Access(ir.OpAtomicCounter, gbuf), Atomic },
		{ b.Access(ir.OpTypedAtomic, gbuf), Atomic },
		{ b.Access(ir.OpOutputRead, 0), OutputRead },
		{ b.Access(ir.OpOutputWrite, 0), OutputWrite },
		{ b.Call(), All &^ EndOfThread },
		{ b.Emit(ir.Op { Kind: ir.OpKind(200) }), All &^ EndOfThread },
		{ b.ALU(), None },
		{ b.Barrier(), None },
		{ b.Fence(true, true), None },
		{ b.Return(), EndOfThread },
	}
	for _, v := range tab {
		require.Equal(t, v.cat, cl.Category(fn, v.op), v.op.String())
	}
}

func TestClassifier_ConservativeProvenance(t *testing.T) {
	b := ir.NewBuilder("provenance")
	gbuf := b.Resource("g", ir.ResourceGlobal)
	sbuf := b.Resource("s", ir.ResourceShared)
	ubuf := b.Resource("u", ir.ResourceUnknown)
	cl := NewClassifier(platform.Caps{})
	fn := b.Func()

	for _, kind := range []ir.OpKind { ir.OpLoad, ir.OpStore, ir.OpBufferLoad, ir.OpBufferStore } {
		var union Mask
		for _, res := range []int { gbuf, sbuf } {
			union |= cl.Category(fn, b.Emit(ir.Op { Kind: kind, Space: ir.SpaceGeneric, Res: res }))
		}
		for _, res := range []int { ubuf, 0, 42 } {
			op := b.Emit(ir.Op { Kind: kind, Space: ir.SpaceGeneric, Res: res })
			require.Equal(t, union, cl.Category(fn, op), op.String())
		}
	}

	/* atomics on unresolved pointers */
	op := b.Atomic(ir.SpaceGeneric, "")
	require.Equal(t, Atomic, cl.Category(fn, op))
	require.Equal(t, Buffer | Shared, cl.AtomicTargetMask(fn, op))
}

func TestClassifier_AtomicTargetMask(t *testing.T) {
	b := ir.NewBuilder("atomics")
	gbuf := b.Resource("g", ir.ResourceGlobal)
	cl := NewClassifier(platform.Caps{})
	fn := b.Func()
	require.Equal(t, Buffer, cl.AtomicTargetMask(fn, b.Atomic(ir.SpaceGlobal, "")))
	require.Equal(t, Shared, cl.AtomicTargetMask(fn, b.Atomic(ir.SpaceShared, "")))
	require.Equal(t, Buffer, cl.AtomicTargetMask(fn, b.Emit(ir.Op { Kind: ir.OpAtomic, Space: ir.SpaceGeneric, Res: gbuf })))
	require.Equal(t, Buffer, cl.AtomicTargetMask(fn, b.Access(ir.OpAtomicCounter, gbuf)))
	require.Equal(t, Typed, cl.AtomicTargetMask(fn, b.Access(ir.OpTypedAtomic, gbuf)))
	require.Equal(t, None, cl.AtomicTargetMask(fn, b.Load(ir.SpaceGlobal, "")))
}

func TestClassifier_DefaultMaskTable(t *testing.T) {
	b := ir.NewBuilder("table")
	gl := b.Fence(true, false)
	lo := b.Fence(false, false)
	ty := b.TypedFence(false)
	ou := b.OutputFence()
	un := b.UnifiedFence(ir.TargetTGM, ir.ScopeGPU, ir.FenceNone)

	legacy := NewClassifier(platform.Caps{})
	require.Equal(t, Atomic | Buffer | Shared | Typed | EndOfThread, legacy.DefaultMask(gl))
	require.Equal(t, Atomic | Shared | EndOfThread, legacy.DefaultMask(lo))
	require.Equal(t, Atomic | Buffer | Shared | Typed | EndOfThread, legacy.DefaultMask(ty))
	require.Equal(t, Atomic | Buffer | Output | EndOfThread, legacy.DefaultMask(ou))
	require.Equal(t, All, legacy.DefaultMask(un))

	slm := NewClassifier(platform.Caps { IndependentSharedFence: true, TypedFence: true })
	require.Equal(t, Atomic | Buffer | EndOfThread, slm.DefaultMask(gl))
	require.Equal(t, Atomic | Typed | EndOfThread, slm.DefaultMask(ty))

	lsc, err := platform.Preset("lsc")
	require.NoError(t, err)
	require.Equal(t, Output | EndOfThread, NewClassifier(lsc).DefaultMask(ou))
	require.Equal(t, Atomic | Typed | EndOfThread, NewClassifier(lsc).DefaultMask(un))
}

func TestClassifier_DefaultMaskInvariants(t *testing.T) {
	b := ir.NewBuilder("invariants")
	ops := syncOps(b)
	for _, caps := range allCaps() {
		cl := NewClassifier(caps)
		for _, op := range ops {
			dm := cl.DefaultMask(op)
			require.True(t, dm.Has(cl.DefaultWriteMask(op)), "%s %s", caps, op)
			require.NotEqual(t, None, cl.DefaultWriteMask(op), "%s %s", caps, op)
			require.Equal(t, op.IsFence(), dm.Has(EndOfThread), "%s %s", caps, op)
			for _, r := range cl.InvalidationResources(op) {
				require.True(t, dm.Has(r.Read() | r.Write()), "%s %s %s", caps, op, r)
			}
		}
	}
}

func TestClassifier_DefaultMaskPanics(t *testing.T) {
	b := ir.NewBuilder("panics")
	lsc := NewClassifier(platform.Caps { UnifiedFence: true })
	bad := b.UnifiedFence(ir.MemoryTarget(99), ir.ScopeGPU, ir.FenceNone)
	require.Panics(t, func() { lsc.DefaultMask(bad) })
	require.Panics(t, func() { lsc.DefaultMask(b.Load(ir.SpaceGlobal, "")) })
}
