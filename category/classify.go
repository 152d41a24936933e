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
	"fmt"

	"github.com/cloudwego/syncopt/ir"
	"github.com/cloudwego/syncopt/platform"
)

// Classifier maps operations to categories for one target platform.
type Classifier struct {
	Caps platform.Caps
}

func NewClassifier(caps platform.Caps) Classifier {
	return Classifier { Caps: caps }
}

func pick(write bool, rd Mask, wr Mask) Mask {
	if write {
		return wr
	} else {
		return rd
	}
}

// provenance resolves the categories a generic or resource based access may
// touch. Unknown provenance is every concrete possibility.
func provenance(fn *ir.Function, res int, write bool) Mask {
	switch fn.LookupResource(res) {
		case ir.ResourceGlobal   : return pick(write, BufferRead, BufferWrite)
		case ir.ResourceShared   : return pick(write, SharedRead, SharedWrite)
		case ir.ResourceReadOnly : return pick(write, None, BufferWrite)
		default                  : return pick(write, BufferRead | SharedRead, BufferWrite | SharedWrite)
	}
}

func space(fn *ir.Function, op *ir.Op, write bool) Mask {
	switch op.Space {
		case ir.SpacePrivate  : return None
		case ir.SpaceGlobal   : return pick(write, BufferRead, BufferWrite)
		case ir.SpaceShared   : return pick(write, SharedRead, SharedWrite)
		case ir.SpaceConstant : return pick(write, None, BufferWrite)
		default               : return provenance(fn, op.Res, write)
	}
}

// Category returns the categories of op. Sync operations, ALU and branches
// have no category, a return is EndOfThread, and anything unknown gets every
// memory category.
func (self Classifier) Category(fn *ir.Function, op *ir.Op) Mask {
	switch op.Kind {
		case ir.OpNop, ir.OpALU, ir.OpBranch : return None
		case ir.OpLoad                       : return space(fn, op, false)
		case ir.OpStore                      : return space(fn, op, true)
		case ir.OpBufferLoad                 : return provenance(fn, op.Res, false)
		case ir.OpBufferStore                : return provenance(fn, op.Res, true)
		case ir.OpTypedWrite                 : return TypedWrite
		case ir.OpAtomic                     : return Atomic
		case ir.OpAtomicCounter              : return Atomic
		case ir.OpTypedAtomic                : return Atomic
		case ir.OpOutputRead                 : return OutputRead
		case ir.OpOutputWrite                : return OutputWrite
		case ir.OpReturn                     : return EndOfThread
		case ir.OpTypedRead, ir.OpSample     : return self.typedRead(fn, op)
		default                              : return self.other(op)
	}
}

func (self Classifier) typedRead(fn *ir.Function, op *ir.Op) Mask {
	if fn.LookupResource(op.Res) == ir.ResourceReadOnly {
		return None
	} else {
		return TypedRead
	}
}

func (self Classifier) other(op *ir.Op) Mask {
	if op.IsSync() {
		return None
	} else {
		return All &^ EndOfThread
	}
}

// AtomicTargetMask returns the kind of memory an atomic operates on, as a
// read-write pair. It is None for non-atomic operations.
func (self Classifier) AtomicTargetMask(fn *ir.Function, op *ir.Op) Mask {
	switch op.Kind {
		case ir.OpAtomicCounter : return Buffer
		case ir.OpTypedAtomic   : return Typed
		case ir.OpAtomic        : break
		default                 : return None
	}

	/* pointer based atomics */
	switch op.Space {
		case ir.SpaceGlobal : return Buffer
		case ir.SpaceShared : return Shared
	}

	/* everything else goes through the provenance */
	switch fn.LookupResource(op.Res) {
		case ir.ResourceGlobal : return Buffer
		case ir.ResourceShared : return Shared
		default                : return Buffer | Shared
	}
}

// DefaultMask returns the categories a synchronization instruction is
// defined to interact with, given its encoded bits and the platform.
// Barriers cover every memory category but have no effect at thread exit,
// fences always cover atomics (except the output fence) and thread exit.
func (self Classifier) DefaultMask(op *ir.Op) Mask {
	caps := self.Caps
	attr := op.Fence

	/* check for the instruction kind */
	switch op.Kind {
		case ir.OpBarrier: {
			return Memory
		}

		case ir.OpUntypedFence: {
			if !attr.Global {
				return Atomic | Shared | EndOfThread
			}
			ret := Atomic | Buffer | EndOfThread
			if !caps.IndependentSharedFence {
				ret |= Shared
			}
			if !caps.TypedFence {
				ret |= Typed
			}
			return ret
		}

		case ir.OpSharedFence: {
			return Atomic | Shared | EndOfThread
		}

		case ir.OpTypedFence: {
			ret := Atomic | Typed | EndOfThread
			if caps.TypedFence {
				return ret
			}
			ret |= Buffer
			if !caps.IndependentSharedFence {
				ret |= Shared
			}
			return ret
		}

		case ir.OpOutputFence: {
			if caps.OutputFence {
				return Output | EndOfThread
			} else {
				return Output | Atomic | Buffer | EndOfThread
			}
		}

		case ir.OpUnifiedFence: {
			if !caps.UnifiedFence {
				return All
			}
			switch attr.Target {
				case ir.TargetUGM, ir.TargetUGML : return Atomic | Buffer | EndOfThread
				case ir.TargetTGM                : return Atomic | Typed | EndOfThread
				case ir.TargetSLM                : return Atomic | Shared | EndOfThread
				case ir.TargetURB                : return Output | EndOfThread
				default                          : panic(ir.EInvariant(op, fmt.Sprintf("unknown memory target %d", attr.Target)))
			}
		}

		default: {
			panic(ir.EInvariant(op, "not a synchronization instruction"))
		}
	}
}

// DefaultWriteMask is the part of DefaultMask that some earlier write must
// overlap for the instruction to be worth analyzing at all.
func (self Classifier) DefaultWriteMask(op *ir.Op) Mask {
	return self.DefaultMask(op) & AnyWrite
}

// InvalidationResources returns the resource kinds whose caches a fence's
// invalidation effect actually affects.
func (self Classifier) InvalidationResources(op *ir.Op) []Resource {
	switch op.Kind {
		case ir.OpTypedFence: {
			return []Resource { ResTyped }
		}

		case ir.OpUntypedFence: {
			if !op.Fence.Global {
				return nil
			} else if self.Caps.TypedFence {
				return []Resource { ResBuffer }
			} else {
				return []Resource { ResBuffer, ResTyped }
			}
		}

		case ir.OpUnifiedFence: {
			if !self.Caps.UnifiedFence {
				return []Resource { ResBuffer, ResTyped, ResOutput }
			}
			switch op.Fence.Target {
				case ir.TargetUGM, ir.TargetUGML : return []Resource { ResBuffer }
				case ir.TargetTGM                : return []Resource { ResTyped }
				case ir.TargetURB                : return []Resource { ResOutput }
				case ir.TargetSLM                : return nil
				default                          : panic(ir.EInvariant(op, fmt.Sprintf("unknown memory target %d", op.Fence.Target)))
			}
		}

		default: {
			return nil
		}
	}
}
