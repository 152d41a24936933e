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

// Builder assembles a Function block by block. Blocks are referred to by name
// and created on first use, the first block created is the entry.
type Builder struct {
	fn *Function
	bb *BasicBlock
	nb map[string]*BasicBlock
}

func NewBuilder(name string) *Builder {
	return &Builder {
		fn: NewFunction(name),
		nb: make(map[string]*BasicBlock),
	}
}

func (self *Builder) Func() *Function {
	return self.fn
}

func (self *Builder) Resource(name string, kind ResourceKind) int {
	return self.fn.AddResource(name, kind)
}

func (self *Builder) lookup(name string) *BasicBlock {
	if bb, ok := self.nb[name]; ok {
		return bb
	} else {
		bb = self.fn.CreateBlock(name)
		self.nb[name] = bb
		return bb
	}
}

// Block moves the insertion point to the end of the named block.
func (self *Builder) Block(name string) *BasicBlock {
	self.bb = self.lookup(name)
	return self.bb
}

func (self *Builder) Emit(op Op) *Op {
	if self.bb == nil {
		self.Block("entry")
	}
	return self.fn.Append(self.bb, op)
}

func (self *Builder) Load(space AddressSpace, addr string) *Op {
	return self.Emit(Op { Kind: OpLoad, Space: space, Addr: addr })
}

func (self *Builder) Store(space AddressSpace, addr string) *Op {
	return self.Emit(Op { Kind: OpStore, Space: space, Addr: addr })
}

func (self *Builder) Atomic(space AddressSpace, addr string) *Op {
	return self.Emit(Op { Kind: OpAtomic, Space: space, Addr: addr })
}

// Access emits a resource based operation such as OpBufferLoad or
// OpTypedWrite on resource handle res.
func (self *Builder) Access(kind OpKind, res int) *Op {
	return self.Emit(Op { Kind: kind, Res: res })
}

func (self *Builder) ALU() *Op {
	return self.Emit(Op { Kind: OpALU })
}

func (self *Builder) Call() *Op {
	return self.Emit(Op { Kind: OpCall })
}

func (self *Builder) Barrier() *Op {
	return self.Emit(Op { Kind: OpBarrier })
}

func (self *Builder) Fence(global bool, invalidate bool) *Op {
	return self.Emit(Op {
		Kind  : OpUntypedFence,
		Fence : FenceAttrs { Global: global, Invalidate: invalidate },
	})
}

func (self *Builder) SharedFence() *Op {
	return self.Emit(Op { Kind: OpSharedFence })
}

func (self *Builder) TypedFence(invalidate bool) *Op {
	return self.Emit(Op {
		Kind  : OpTypedFence,
		Fence : FenceAttrs { Invalidate: invalidate },
	})
}

func (self *Builder) OutputFence() *Op {
	return self.Emit(Op { Kind: OpOutputFence })
}

func (self *Builder) UnifiedFence(target MemoryTarget, scope Scope, op FenceOp) *Op {
	return self.Emit(Op {
		Kind  : OpUnifiedFence,
		Fence : FenceAttrs { Target: target, Scope: scope, Op: op },
	})
}

// Jump terminates the current block with a branch to the named blocks.
func (self *Builder) Jump(targets ...string) *Op {
	tr := self.Emit(Op { Kind: OpBranch })

	/* link every target */
	for _, name := range targets {
		self.fn.Link(tr.Block, self.lookup(name))
	}
	return tr
}

func (self *Builder) Return() *Op {
	return self.Emit(Op { Kind: OpReturn })
}

// Build verifies and returns the function.
func (self *Builder) Build() (*Function, error) {
	if err := self.fn.Verify(); err != nil {
		return nil, err
	} else {
		return self.fn, nil
	}
}
