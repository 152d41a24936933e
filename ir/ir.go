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

// Package ir describes the lowered kernel CFG that the synchronization
// passes consume: basic blocks of kind-tagged operations, with the encoded
// immediate operands of every fence and barrier.
package ir

import (
	"fmt"
	"strings"
)

type OpKind uint8

const (
	OpNop OpKind = iota
	OpALU

	/* pointer based memory operations */
	OpLoad
	OpStore

	/* resource based memory operations */
	OpBufferLoad
	OpBufferStore
	OpTypedRead
	OpTypedWrite
	OpSample

	/* atomics */
	OpAtomic
	OpAtomicCounter
	OpTypedAtomic

	/* structured output (URB) */
	OpOutputRead
	OpOutputWrite

	/* opaque calls */
	OpCall

	/* synchronization */
	OpBarrier
	OpUntypedFence
	OpSharedFence
	OpTypedFence
	OpOutputFence
	OpUnifiedFence

	/* terminators */
	OpBranch
	OpReturn

	_OpMax
)

type AddressSpace uint8

const (
	SpacePrivate AddressSpace = iota
	SpaceGlobal
	SpaceConstant
	SpaceShared
	SpaceGeneric
)

type ResourceKind uint8

const (
	ResourceUnknown ResourceKind = iota
	ResourceGlobal
	ResourceShared
	ResourceReadOnly
)

// FenceOp is the cache-control operation of a unified fence. The values form
// the lattice none < invalidate < evict.
type FenceOp uint8

const (
	FenceNone FenceOp = iota
	FenceInvalidate
	FenceEvict
)

type MemoryTarget uint8

const (
	TargetUGM MemoryTarget = iota
	TargetUGML
	TargetTGM
	TargetSLM
	TargetURB
)

// Scope is ordered from the narrowest to the widest visibility.
type Scope uint8

const (
	ScopeGroup Scope = iota
	ScopeLocal
	ScopeTile
	ScopeGPU
	ScopeGPUs
	ScopeSystem
)

// FenceAttrs holds the encoded immediates of a synchronization operation.
// Global and Invalidate apply to untyped and typed fences, the rest to
// unified fences only.
type FenceAttrs struct {
	Global     bool
	Invalidate bool
	Op         FenceOp
	Target     MemoryTarget
	Scope      Scope
}

// Op is a single node of the CFG. Ops live in the arena of their function
// and are referenced by a stable Id, so an erased op can still be looked up
// and checked for liveness.
type Op struct {
	Id    int
	Kind  OpKind
	Space AddressSpace
	Res   int
	Addr  string
	Fence FenceAttrs
	Block *BasicBlock

	pos  int
	dead bool
}

func (self *Op) Pos() int {
	return self.pos
}

func (self *Op) Live() bool {
	return !self.dead
}

func (self *Op) IsSync() bool {
	return self.Kind >= OpBarrier && self.Kind <= OpUnifiedFence
}

func (self *Op) IsFence() bool {
	return self.Kind >= OpUntypedFence && self.Kind <= OpUnifiedFence
}

func (self *Op) IsBarrier() bool {
	return self.Kind == OpBarrier
}

func (self *Op) IsTerminator() bool {
	return self.Kind == OpBranch || self.Kind == OpReturn
}

func (self *Op) IsAtomic() bool {
	return self.Kind == OpAtomic || self.Kind == OpAtomicCounter || self.Kind == OpTypedAtomic
}

// HasInvalidation reports whether the fence carries a cache invalidation
// effect that could be dropped. Evicting unified fences are not included,
// their write-back part is not removable.
func (self *Op) HasInvalidation() bool {
	switch self.Kind {
		case OpUntypedFence, OpTypedFence : return self.Fence.Invalidate
		case OpUnifiedFence               : return self.Fence.Op == FenceInvalidate
		default                           : return false
	}
}

func (self *Op) String() string {
	var buf []string
	buf = append(buf, self.Kind.String())

	/* address space for pointer based ops */
	if self.Kind == OpLoad || self.Kind == OpStore || self.Kind == OpAtomic {
		buf = append(buf, self.Space.String())
	}

	/* symbolic address */
	if self.Addr != "" {
		buf = append(buf, "@"+self.Addr)
	}

	/* resource reference */
	if self.Res != 0 && self.Block != nil && self.Block.fn != nil {
		if name := self.Block.fn.ResourceName(self.Res); name != "" {
			buf = append(buf, "res="+name)
		}
	}

	/* fence immediates */
	switch self.Kind {
		case OpUntypedFence: {
			if self.Fence.Global {
				buf = append(buf, "global")
			}
			if self.Fence.Invalidate {
				buf = append(buf, "invalidate")
			}
		}

		case OpTypedFence: {
			if self.Fence.Invalidate {
				buf = append(buf, "invalidate")
			}
		}

		case OpUnifiedFence: {
			buf = append(
				buf,
				"target="+self.Fence.Target.String(),
				"scope="+self.Fence.Scope.String(),
				"op="+self.Fence.Op.String(),
			)
		}
	}

	/* join them together */
	return strings.Join(buf, " ")
}

func (self OpKind) String() string {
	if self < _OpMax {
		return _Mnemonics[self]
	} else {
		return fmt.Sprintf("OpKind(%d)", uint8(self))
	}
}

func (self AddressSpace) String() string {
	if int(self) < len(_SpaceNames) {
		return _SpaceNames[self]
	} else {
		return fmt.Sprintf("AddressSpace(%d)", uint8(self))
	}
}

func (self ResourceKind) String() string {
	if int(self) < len(_ResourceNames) {
		return _ResourceNames[self]
	} else {
		return fmt.Sprintf("ResourceKind(%d)", uint8(self))
	}
}

func (self FenceOp) String() string {
	if int(self) < len(_FenceOpNames) {
		return _FenceOpNames[self]
	} else {
		return fmt.Sprintf("FenceOp(%d)", uint8(self))
	}
}

func (self MemoryTarget) String() string {
	if int(self) < len(_TargetNames) {
		return _TargetNames[self]
	} else {
		return fmt.Sprintf("MemoryTarget(%d)", uint8(self))
	}
}

func (self Scope) String() string {
	if int(self) < len(_ScopeNames) {
		return _ScopeNames[self]
	} else {
		return fmt.Sprintf("Scope(%d)", uint8(self))
	}
}
