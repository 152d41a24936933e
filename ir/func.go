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
	"fmt"
	"strings"
)

// Resource is a memory object a kernel binds, used to resolve the provenance
// of generic pointers and resource based accesses.
type Resource struct {
	Name string
	Kind ResourceKind
}

// Function is one kernel: its blocks (the first one is the entry), the arena
// owning every op ever created for it, and the resource table.
type Function struct {
	Name      string
	Blocks    []*BasicBlock
	Arena     []*Op
	Resources []Resource
}

func NewFunction(name string) *Function {
	return &Function {
		Name: name,
	}
}

func (self *Function) Entry() *BasicBlock {
	if len(self.Blocks) == 0 {
		return nil
	} else {
		return self.Blocks[0]
	}
}

func (self *Function) CreateBlock(name string) *BasicBlock {
	bb := &BasicBlock {
		Id   : len(self.Blocks),
		Name : name,
		fn   : self,
	}
	self.Blocks = append(self.Blocks, bb)
	return bb
}

// AddResource binds a new resource and returns the handle ops use in their
// Res field. Handles start at 1, zero means "no resource".
func (self *Function) AddResource(name string, kind ResourceKind) int {
	self.Resources = append(self.Resources, Resource { Name: name, Kind: kind })
	return len(self.Resources)
}

// LookupResource returns the resource kind behind handle h, or
// ResourceUnknown when h does not name a bound resource.
func (self *Function) LookupResource(h int) ResourceKind {
	if h <= 0 || h > len(self.Resources) {
		return ResourceUnknown
	} else {
		return self.Resources[h - 1].Kind
	}
}

// ResourceName returns the name behind handle h, or "" if there is none.
func (self *Function) ResourceName(h int) string {
	if h <= 0 || h > len(self.Resources) {
		return ""
	} else {
		return self.Resources[h - 1].Name
	}
}

// Append creates a new op in the arena and appends it to bb.
func (self *Function) Append(bb *BasicBlock, op Op) *Op {
	p := new(Op)
	*p = op
	p.Id = len(self.Arena)
	p.dead = false
	self.Arena = append(self.Arena, p)
	bb.append(p)
	return p
}

// Link adds the control edge from -> to.
func (self *Function) Link(from *BasicBlock, to *BasicBlock) {
	from.Succ = append(from.Succ, to)
	to.Pred = append(to.Pred, from)
}

// Op returns the op with the given arena index, live or not.
func (self *Function) Op(id int) *Op {
	return self.Arena[id]
}

// Erase removes op from its block. The op stays in the arena with its
// liveness bit cleared. Terminators can never be erased.
func (self *Function) Erase(op *Op) {
	if op.dead {
		panic(EInvariant(op, "op erased twice"))
	}

	/* never leave a block without its terminator */
	if op.IsTerminator() {
		panic(EInvariant(op, "erasing a terminator"))
	}

	/* must still be attached to this function */
	if op.Block == nil || op.Block.fn != self || op.Block.Ops[op.pos] != op {
		panic(EInvariant(op, "op is not attached to this function"))
	}

	/* unlink from the block */
	op.Block.remove(op)
	op.dead = true
	op.pos = -1
}

// Live returns all live ops in block order.
func (self *Function) Live() []*Op {
	var ret []*Op
	for _, bb := range self.Blocks {
		ret = append(ret, bb.Ops...)
	}
	return ret
}

// Verify checks the structural invariants the passes rely on: every block
// ends with a terminator whose kind matches its successors, and the edge
// lists are symmetric.
func (self *Function) Verify() error {
	for _, bb := range self.Blocks {
		tr := bb.Term()

		/* every block must be terminated */
		if tr == nil {
			return fmt.Errorf("bb_%d: missing terminator", bb.Id)
		}

		/* return blocks have no successors */
		if tr.Kind == OpReturn && len(bb.Succ) != 0 {
			return fmt.Errorf("bb_%d: return block with successors", bb.Id)
		}

		/* branch blocks have at least one successor */
		if tr.Kind == OpBranch && len(bb.Succ) == 0 {
			return fmt.Errorf("bb_%d: branch without successors", bb.Id)
		}

		/* check every position and owner */
		for i, op := range bb.Ops {
			if op.pos != i || op.Block != bb || op.dead {
				return fmt.Errorf("bb_%d: corrupted op #%d at %d", bb.Id, op.Id, i)
			}
		}

		/* successor edges must be mirrored */
		for _, s := range bb.Succ {
			if !hasBlock(s.Pred, bb) {
				return fmt.Errorf("bb_%d -> bb_%d: missing predecessor link", bb.Id, s.Id)
			}
		}

		/* predecessor edges must be mirrored */
		for _, p := range bb.Pred {
			if !hasBlock(p.Succ, bb) {
				return fmt.Errorf("bb_%d <- bb_%d: dangling predecessor link", bb.Id, p.Id)
			}
		}
	}
	return nil
}

func hasBlock(list []*BasicBlock, bb *BasicBlock) bool {
	for _, p := range list {
		if p == bb {
			return true
		}
	}
	return false
}

func (self *Function) String() string {
	nb := len(self.Blocks)
	ret := make([]string, 0, nb)

	/* dump every block */
	for _, bb := range self.Blocks {
		ret = append(ret, bb.String())
	}

	/* join them together */
	return fmt.Sprintf(
		"func %s {\n%s\n}",
		self.Name,
		strings.Join(ret, "\n"),
	)
}
